package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"freestyle/internal/engine"
)

// Filtergraph renders chain as a comma-separated ffmpeg audio filtergraph.
func Filtergraph(chain engine.Chain) (string, error) {
	if len(chain) == 0 {
		return "", fmt.Errorf("filtergraph: empty chain")
	}
	parts := make([]string, 0, len(chain))
	for i, f := range chain {
		rendered, err := renderFilter(f)
		if err != nil {
			return "", fmt.Errorf("filtergraph: filter %d: %w", i, err)
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, ","), nil
}

func renderFilter(f engine.Filter) (string, error) {
	switch v := f.(type) {
	case engine.HighPass:
		poles := v.Poles
		if poles <= 0 {
			poles = 2
		}
		return fmt.Sprintf("highpass=f=%s:poles=%d", num(v.Frequency), poles), nil
	case engine.LowShelf:
		return fmt.Sprintf("lowshelf=g=%s:f=%s:t=q:w=%s", num(v.GainDB), num(v.Frequency), num(v.Q)), nil
	case engine.Peaking:
		return fmt.Sprintf("equalizer=f=%s:t=q:w=%s:g=%s", num(v.Frequency), num(v.Q), num(v.GainDB)), nil
	case engine.HighShelf:
		return fmt.Sprintf("highshelf=g=%s:f=%s:t=q:w=%s", num(v.GainDB), num(v.Frequency), num(v.Q)), nil
	case engine.Compressor:
		return fmt.Sprintf("acompressor=threshold=%sdB:ratio=%s:attack=%s:release=%s:makeup=%s",
			num(v.ThresholdDB), num(v.Ratio), num(v.AttackMS), num(v.ReleaseMS), num(v.MakeupDB)), nil
	case engine.StereoTools:
		return fmt.Sprintf("stereotools=mlev=%s:slev=%s:sbal=%s", num(v.MidLevel), num(v.SideLevel), num(v.Balance)), nil
	case engine.LoudNorm:
		return renderLoudNorm(v), nil
	case engine.Limiter:
		return fmt.Sprintf("alimiter=limit=%sdB:level=%t", num(v.CeilingDB), v.AutoLevel), nil
	case nil:
		return "", fmt.Errorf("nil filter")
	default:
		return "", fmt.Errorf("unsupported filter %q (%T)", f.FilterName(), f)
	}
}

func renderLoudNorm(v engine.LoudNorm) string {
	var b strings.Builder
	fmt.Fprintf(&b, "loudnorm=I=%s:LRA=%s:TP=%s", num(v.Target.IntegratedLUFS), num(v.Target.RangeLU), num(v.Target.TruePeakDBTP))
	if m := v.Measured; m != nil {
		fmt.Fprintf(&b, ":measured_I=%s:measured_LRA=%s:measured_TP=%s:measured_thresh=%s",
			m.InputI, m.InputLRA, m.InputTP, m.InputThresh)
	}
	if v.Linear {
		b.WriteString(":linear=true")
	}
	if v.ReportJSON {
		b.WriteString(":print_format=json")
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

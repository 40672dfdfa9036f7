package mastering

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"freestyle/internal/engine"
)

// defaultThreshold is the noise gate assumed when analysis is unusable.
const defaultThreshold = -24

// FallbackMeasurement reports the target itself as measured, which makes
// linear normalization a no-op gain stage.
func FallbackMeasurement(target engine.LoudnessTarget) engine.Measurement {
	return engine.Measurement{
		InputI:      num(target.IntegratedLUFS),
		InputLRA:    num(target.RangeLU),
		InputTP:     num(target.TruePeakDBTP),
		InputThresh: num(defaultThreshold),
	}
}

// ParseMeasurement extracts the loudness report embedded in diag. The report
// is the brace-balanced block ending at the last closing brace. Missing or
// non-finite fields take their fallback value; complete reports return
// exact=true.
func ParseMeasurement(diag string, target engine.LoudnessTarget) (engine.Measurement, bool) {
	fallback := FallbackMeasurement(target)

	block, ok := lastJSONBlock(diag)
	if !ok {
		return fallback, false
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(block), &report); err != nil {
		return fallback, false
	}

	exact := true
	pick := func(key, def string) string {
		if v, ok := finiteField(report, key); ok {
			return v
		}
		exact = false
		return def
	}
	return engine.Measurement{
		InputI:      pick("input_i", fallback.InputI),
		InputLRA:    pick("input_lra", fallback.InputLRA),
		InputTP:     pick("input_tp", fallback.InputTP),
		InputThresh: pick("input_thresh", fallback.InputThresh),
	}, exact
}

// lastJSONBlock returns the outermost {...} block that closes at the final
// '}' in s.
func lastJSONBlock(s string) (string, bool) {
	end := strings.LastIndexByte(s, '}')
	if end < 0 {
		return "", false
	}
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return s[i : end+1], true
			}
		}
	}
	return "", false
}

func finiteField(report map[string]any, key string) (string, bool) {
	raw, ok := report[key]
	if !ok {
		return "", false
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = strings.TrimSpace(v)
	case float64:
		text = num(v)
	default:
		return "", false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return text, true
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

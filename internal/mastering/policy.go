package mastering

import (
	"freestyle/internal/config"
	"freestyle/internal/engine"
)

// Policy holds the mastering targets and delivery settings.
type Policy struct {
	Target         engine.LoudnessTarget
	MP3BitrateKbps int
}

// DefaultPolicy targets -14 LUFS integrated, 11 LU range, -1 dBTP, 320k MP3.
func DefaultPolicy() Policy {
	return Policy{
		Target:         engine.LoudnessTarget{IntegratedLUFS: -14, RangeLU: 11, TruePeakDBTP: -1},
		MP3BitrateKbps: 320,
	}
}

// PolicyFromConfig reads targets from the mastering config section.
func PolicyFromConfig(cfg config.Mastering) Policy {
	return Policy{
		Target: engine.LoudnessTarget{
			IntegratedLUFS: cfg.TargetLUFS,
			RangeLU:        cfg.TargetLRA,
			TruePeakDBTP:   cfg.TargetTP,
		},
		MP3BitrateKbps: cfg.MP3BitrateKbps,
	}
}

// ToneChain is the tonal shaping shared by analysis and render.
func (p Policy) ToneChain() engine.Chain {
	return engine.Chain{
		engine.HighPass{Frequency: 30, Poles: 2},
		engine.LowShelf{Frequency: 80, GainDB: 2, Q: 0.707},
		engine.Peaking{Frequency: 3000, GainDB: 1.5, Q: 1.5},
		engine.HighShelf{Frequency: 12000, GainDB: 1, Q: 0.707},
		engine.Compressor{ThresholdDB: -18, Ratio: 4, AttackMS: 10, ReleaseMS: 100, MakeupDB: 2},
	}
}

// AnalysisChain is the pass-one chain: tone shaping then loudness analysis.
func (p Policy) AnalysisChain() engine.Chain {
	return p.ToneChain().Append(engine.LoudNorm{Target: p.Target, ReportJSON: true})
}

// RenderChain is the pass-two chain seeded with measured.
func (p Policy) RenderChain(measured engine.Measurement) engine.Chain {
	return p.ToneChain().Append(
		engine.StereoTools{MidLevel: 1, SideLevel: 1.05, Balance: 0},
		engine.LoudNorm{Target: p.Target, Measured: &measured, Linear: true},
		engine.Limiter{CeilingDB: p.Target.TruePeakDBTP, AutoLevel: false},
	)
}

// MP3Options returns the delivery encode settings.
func (p Policy) MP3Options() engine.MP3Options {
	bitrate := p.MP3BitrateKbps
	if bitrate <= 0 {
		bitrate = 320
	}
	return engine.MP3Options{BitrateKbps: bitrate, Quality: 0}
}

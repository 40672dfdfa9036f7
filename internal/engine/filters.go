package engine

// Filter is one element of a signal-processing chain. Implementations are
// plain value types; engines switch on the concrete type to render them.
type Filter interface {
	FilterName() string
}

// Chain is an ordered list of filters applied left to right.
type Chain []Filter

// Append returns a new chain with filters added after c.
func (c Chain) Append(filters ...Filter) Chain {
	out := make(Chain, 0, len(c)+len(filters))
	out = append(out, c...)
	return append(out, filters...)
}

// HighPass attenuates content below Frequency.
type HighPass struct {
	Frequency float64
	Poles     int
}

// LowShelf boosts or cuts content below Frequency.
type LowShelf struct {
	Frequency float64
	GainDB    float64
	Q         float64
}

// Peaking is a parametric bell boost or cut centered on Frequency.
type Peaking struct {
	Frequency float64
	GainDB    float64
	Q         float64
}

// HighShelf boosts or cuts content above Frequency.
type HighShelf struct {
	Frequency float64
	GainDB    float64
	Q         float64
}

// Compressor is a feed-forward dynamics compressor.
type Compressor struct {
	ThresholdDB float64
	Ratio       float64
	AttackMS    float64
	ReleaseMS   float64
	MakeupDB    float64
}

// StereoTools adjusts mid/side levels and balance.
type StereoTools struct {
	MidLevel  float64
	SideLevel float64
	Balance   float64
}

// LoudnessTarget is the EBU R128 goal for normalization.
type LoudnessTarget struct {
	IntegratedLUFS float64
	RangeLU        float64
	TruePeakDBTP   float64
}

// Measurement is a loudness analysis report. Values are kept as the decimal
// strings the analyzer printed so they can be fed back verbatim.
type Measurement struct {
	InputI      string
	InputLRA    string
	InputTP     string
	InputThresh string
}

// LoudNorm normalizes loudness to Target. With Measured nil it runs as an
// analysis step that reports a Measurement; otherwise the measured values
// seed a Linear normalization.
type LoudNorm struct {
	Target   LoudnessTarget
	Measured *Measurement
	Linear   bool
	// ReportJSON asks the engine to print the measurement as JSON.
	ReportJSON bool
}

// Limiter is a brick-wall peak limiter.
type Limiter struct {
	CeilingDB float64
	// AutoLevel re-normalizes output after limiting when true.
	AutoLevel bool
}

func (HighPass) FilterName() string    { return "highpass" }
func (LowShelf) FilterName() string    { return "lowshelf" }
func (Peaking) FilterName() string     { return "peaking" }
func (HighShelf) FilterName() string   { return "highshelf" }
func (Compressor) FilterName() string  { return "compressor" }
func (StereoTools) FilterName() string { return "stereotools" }
func (LoudNorm) FilterName() string    { return "loudnorm" }
func (Limiter) FilterName() string     { return "limiter" }

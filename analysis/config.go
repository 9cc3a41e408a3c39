package analysis

// Config holds the frame analysis parameters. One Config drives every file
// in a batch so that vectors stay comparable.
type Config struct {
	SampleRate     int     // expected rate of incoming samples
	WindowSize     int     // analysis window length in samples
	HopSize        int     // advance between consecutive windows
	MelFilters     int     // mel filter bank size feeding the MFCCs
	RolloffPercent float64 // cumulative magnitude fraction for rolloff
	TuningHz       float64 // reference frequency for pitch class folding
	MinTempoBPM    float64
	MaxTempoBPM    float64
}

// DefaultConfig returns the standard analysis settings: 22.05 kHz input,
// 2048-sample windows advancing by 512, 26 mel filters, 85% rolloff.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     22050,
		WindowSize:     2048,
		HopSize:        512,
		MelFilters:     26,
		RolloffPercent: 0.85,
		TuningHz:       440.0,
		MinTempoBPM:    30.0,
		MaxTempoBPM:    240.0,
	}
}

// normalized returns a copy with zero or negative fields replaced by their
// defaults, so a partially filled Config stays usable.
func (c *Config) normalized() *Config {
	out := *c
	def := DefaultConfig()
	if out.SampleRate <= 0 {
		out.SampleRate = def.SampleRate
	}
	if out.WindowSize <= 0 {
		out.WindowSize = def.WindowSize
	}
	if out.HopSize <= 0 {
		out.HopSize = def.HopSize
	}
	if out.MelFilters <= 0 {
		out.MelFilters = def.MelFilters
	}
	if out.RolloffPercent <= 0 || out.RolloffPercent > 1 {
		out.RolloffPercent = def.RolloffPercent
	}
	if out.TuningHz <= 0 {
		out.TuningHz = def.TuningHz
	}
	if out.MinTempoBPM <= 0 {
		out.MinTempoBPM = def.MinTempoBPM
	}
	if out.MaxTempoBPM <= out.MinTempoBPM {
		out.MaxTempoBPM = def.MaxTempoBPM
	}
	return &out
}

// FrameDuration returns the hop interval in seconds, the time step between
// consecutive frame descriptors.
func (c *Config) FrameDuration() float64 {
	return float64(c.HopSize) / float64(c.SampleRate)
}

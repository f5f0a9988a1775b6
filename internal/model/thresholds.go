package model

// Thresholds are the global confidence cut points. Scores below Low are
// discarded by every stage; Level bands a final score.
type Thresholds struct {
	High   float64 `yaml:"high" mapstructure:"high"`
	Medium float64 `yaml:"medium" mapstructure:"medium"`
	Low    float64 `yaml:"low" mapstructure:"low"`
}

// DefaultThresholds returns the standard {80, 50, 20} cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 80, Medium: 50, Low: 20}
}

// Level bands a confidence score. A score of exactly a cut point lands in
// the higher band.
func (t Thresholds) Level(score float64) ConfidenceLevel {
	switch {
	case score >= t.High:
		return ConfidenceHigh
	case score >= t.Medium:
		return ConfidenceMedium
	case score >= t.Low:
		return ConfidenceLow
	default:
		return ConfidenceUnknown
	}
}

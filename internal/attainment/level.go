package attainment

import "fmt"

// Level is a discrete attainment band.
type Level int

const (
	Level0 Level = iota
	Level1
	Level2
	Level3
)

func (l Level) String() string { return fmt.Sprintf("LEVEL_%d", int(l)) }

// Numeric returns the level as a blendable 0.0-3.0 score.
func (l Level) Numeric() float64 { return float64(l) }

// ParseLevel maps a stored numeric level back to a Level, clamping out-of-range values.
func ParseLevel(n int) Level {
	switch {
	case n <= 0:
		return Level0
	case n >= 3:
		return Level3
	default:
		return Level(n)
	}
}

// LevelForPercent classifies a 0-100 percentage into a band. Highest band
// wins; lower bounds are inclusive.
func LevelForPercent(pct float64, cfg Config) Level {
	switch {
	case pct >= cfg.Level3Threshold:
		return Level3
	case pct >= cfg.Level2Threshold:
		return Level2
	case pct >= cfg.Level1Threshold:
		return Level1
	default:
		return Level0
	}
}

// LevelForScore classifies a 0-3 scale score. The percent scale is
// canonical for the classifier; every 0-3 input converts through here so
// all call sites agree on the conversion.
func LevelForScore(score float64, cfg Config) Level {
	return LevelForPercent(score/3.0*100.0, cfg)
}

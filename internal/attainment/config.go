package attainment

// Config is the coefficient snapshot for one computation run. Callers
// construct it once per invocation and pass it through both phases; the
// engine never reads ambient/global state.
//
// Weight sums are not validated here. The configuration write path owns
// validation; the engine computes with whatever it is given.
type Config struct {
	// Per-student pass threshold, % of the CO's max marks in an assessment.
	COTargetMarksPercent float64

	// Level cut points on the 0-100 percentage scale, inclusive lower bounds.
	Level1Threshold float64
	Level2Threshold float64
	Level3Threshold float64

	// Assessment category weights for the direct-score blend.
	IA1Weight    float64
	IA2Weight    float64
	EndSemWeight float64

	// Direct/indirect blend weights for the final score.
	DirectWeight   float64
	IndirectWeight float64

	// Display target on the 0-3 scale. Not used by the engine itself;
	// carried so result consumers can flag attained/not-attained.
	POTargetLevel float64
}

// DefaultConfig returns the standard accreditation coefficients used when
// no configuration row exists yet.
func DefaultConfig() Config {
	return Config{
		COTargetMarksPercent: 60.0,
		Level1Threshold:      40.0,
		Level2Threshold:      50.0,
		Level3Threshold:      60.0,
		IA1Weight:            0.2,
		IA2Weight:            0.2,
		EndSemWeight:         0.6,
		DirectWeight:         0.8,
		IndirectWeight:       0.2,
		POTargetLevel:        1.5,
	}
}

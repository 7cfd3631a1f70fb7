package attainment

import "math"

// PassPercentage computes the percentage of students meeting the target
// across a set of components all tagged to one (assessment, CO) pair.
//
// The second return is false when there is no usable data: no components,
// a zero max-marks sum, or no student attempted any of the components.
// Callers must treat that as "no data", never as a zero score.
func PassPercentage(components []Component, marks []Mark, targetPercent float64) (float64, bool) {
	if len(components) == 0 {
		return 0, false
	}
	totalMax := 0.0
	inSet := make(map[string]struct{}, len(components))
	for _, c := range components {
		totalMax += c.MaxMarks
		inSet[c.ID] = struct{}{}
	}
	if totalMax == 0 {
		return 0, false
	}
	targetMarks := totalMax * (targetPercent / 100.0)

	// Sum per student over this component set only. A student missing a
	// mark for one component simply contributes 0 for it; students with no
	// marks at all on this set stay out of the denominator.
	totals := map[string]float64{}
	for _, m := range marks {
		if _, ok := inSet[m.ComponentID]; !ok {
			continue
		}
		if m.RollNo == "" {
			continue
		}
		totals[m.RollNo] += m.Marks
	}
	if len(totals) == 0 {
		return 0, false
	}

	passed := 0
	for _, sum := range totals {
		if sum >= targetMarks { // ties count as meeting
			passed++
		}
	}
	pct := float64(passed) / float64(len(totals)) * 100.0
	return round2(pct), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

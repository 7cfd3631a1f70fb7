package attainment

import "fmt"

// ComputeCourse runs the full CO attainment pass for one course snapshot.
// Pure: it reads only the snapshot and config, and returns one result per
// outcome in snapshot order. A failure on one outcome is recorded on its
// result and does not abort the others.
func ComputeCourse(snap CourseSnapshot, cfg Config) []COResult {
	byCategory := map[Category]*AssessmentInput{}
	for i := range snap.Assessments {
		a := &snap.Assessments[i]
		if _, dup := byCategory[a.Category]; dup {
			continue // at most one per category; first wins
		}
		byCategory[a.Category] = a
	}

	results := make([]COResult, 0, len(snap.Outcomes))
	for _, co := range snap.Outcomes {
		results = append(results, computeOutcome(co, byCategory, snap.Surveys, cfg))
	}
	return results
}

func computeOutcome(co OutcomeInput, byCategory map[Category]*AssessmentInput, surveys map[string]Survey, cfg Config) (res COResult) {
	res = COResult{
		OutcomeID:  co.ID,
		Code:       co.Code,
		Categories: map[Category]CategoryResult{},
		Level:      Level0,
	}
	defer func() {
		if r := recover(); r != nil {
			res = COResult{
				OutcomeID:  co.ID,
				Code:       co.Code,
				Categories: map[Category]CategoryResult{},
				Level:      Level0,
				Err:        fmt.Errorf("compute outcome %s: %v", co.Code, r),
			}
		}
	}()

	target := cfg.COTargetMarksPercent
	if co.TargetPercent != nil && *co.TargetPercent > 0 {
		target = *co.TargetPercent
	}

	// Per-category percentage and level. A missing assessment or an
	// aggregator "no data" drops the category from the blend entirely,
	// weight included: absence is not failure.
	weighted := 0.0
	weightSum := 0.0
	for _, cat := range Categories {
		a, ok := byCategory[cat]
		if !ok {
			continue
		}
		comps := componentsFor(a, co.ID)
		pct, ok := PassPercentage(comps, a.Marks, target)
		if !ok {
			continue
		}
		lvl := LevelForPercent(pct, cfg)
		p := pct
		l := lvl
		res.Categories[cat] = CategoryResult{Percentage: &p, Level: &l}

		w := CategoryWeight(cat, cfg)
		weighted += lvl.Numeric() * w
		weightSum += w
	}

	if weightSum > 0 {
		d := round2(weighted / weightSum)
		res.DirectScore = &d
	}

	if sv, ok := surveys[co.ID]; ok && sv.Responses > 0 {
		ind := round2(sv.AverageScore)
		res.IndirectScore = &ind
	}

	switch {
	case res.DirectScore == nil:
		// No direct data anywhere: final stays nil, level stays LEVEL_0.
	case res.IndirectScore == nil:
		// No renormalization: the indirect complement is dropped, the
		// direct score stands alone.
		f := *res.DirectScore
		res.FinalScore = &f
	default:
		f := round2(*res.DirectScore*cfg.DirectWeight + *res.IndirectScore*cfg.IndirectWeight)
		res.FinalScore = &f
	}

	if res.FinalScore != nil {
		res.Level = LevelForScore(*res.FinalScore, cfg)
	}
	return res
}

func componentsFor(a *AssessmentInput, outcomeID string) []Component {
	var out []Component
	for _, c := range a.Components {
		if c.OutcomeID == outcomeID {
			out = append(out, c)
		}
	}
	return out
}

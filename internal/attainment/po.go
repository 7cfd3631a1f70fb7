package attainment

// ComputeProgramOutcomes rolls CO final scores up into PO attainment via
// the articulation matrix. scores maps outcome ID to the CO's final score
// (nil means the CO has no computed score and its mappings are skipped);
// surveys is keyed by program outcome ID.
//
// A PO whose mappings all got skipped yields no result at all, so callers
// never overwrite a previously valid row with an empty one.
//
// Missing PO survey data follows the CO convention: indirect stays nil and
// the final score is the direct score unchanged.
func ComputeProgramOutcomes(links []COPOLink, scores map[string]*float64, surveys map[string]Survey, cfg Config) []POResult {
	type acc struct {
		weighted  float64
		weightSum float64
		n         int
	}
	accs := map[string]*acc{}
	var order []string
	for _, l := range links {
		if l.Correlation <= 0 {
			continue
		}
		s, ok := scores[l.OutcomeID]
		if !ok || s == nil {
			continue
		}
		a := accs[l.ProgramOutcomeID]
		if a == nil {
			a = &acc{}
			accs[l.ProgramOutcomeID] = a
			order = append(order, l.ProgramOutcomeID)
		}
		w := float64(l.Correlation)
		a.weighted += *s * w
		a.weightSum += w
		a.n++
	}

	results := make([]POResult, 0, len(order))
	for _, poID := range order {
		a := accs[poID]
		if a.weightSum == 0 {
			continue
		}
		res := POResult{
			ProgramOutcomeID: poID,
			DirectScore:      round2(a.weighted / a.weightSum),
			Contributing:     a.n,
		}
		if sv, ok := surveys[poID]; ok && sv.Responses > 0 {
			ind := round2(sv.AverageScore)
			res.IndirectScore = &ind
		}
		if res.IndirectScore != nil {
			res.FinalScore = round2(res.DirectScore*cfg.DirectWeight + *res.IndirectScore*cfg.IndirectWeight)
		} else {
			res.FinalScore = res.DirectScore
		}
		res.Level = LevelForScore(res.FinalScore, cfg)
		results = append(results, res)
	}
	return results
}

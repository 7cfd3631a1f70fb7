package attainment

import "testing"

func fp(v float64) *float64 { return &v }

func TestComputeProgramOutcomes_CorrelationWeighting(t *testing.T) {
	cfg := DefaultConfig()
	links := []COPOLink{
		{OutcomeID: "coA", ProgramOutcomeID: "po1", Correlation: 3},
		{OutcomeID: "coB", ProgramOutcomeID: "po1", Correlation: 1},
	}
	scores := map[string]*float64{"coA": fp(3.0), "coB": fp(0.0)}

	res := ComputeProgramOutcomes(links, scores, nil, cfg)
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1", len(res))
	}
	r := res[0]
	if r.DirectScore != 2.25 { // (3*3 + 0*1) / 4
		t.Fatalf("direct = %v, want 2.25", r.DirectScore)
	}
	if r.Contributing != 2 {
		t.Fatalf("contributing = %d, want 2", r.Contributing)
	}
	if r.FinalScore != 2.25 || r.IndirectScore != nil {
		t.Fatalf("final = %v indirect = %v, want direct passthrough", r.FinalScore, r.IndirectScore)
	}
	// 2.25/3 = 75% => Level3 at the default 60 cut point.
	if r.Level != Level3 {
		t.Fatalf("level = %v, want %v", r.Level, Level3)
	}
}

func TestComputeProgramOutcomes_SkipsUnscoredCOs(t *testing.T) {
	cfg := DefaultConfig()
	links := []COPOLink{
		{OutcomeID: "coA", ProgramOutcomeID: "po1", Correlation: 2},
		{OutcomeID: "coB", ProgramOutcomeID: "po1", Correlation: 3}, // no score
	}
	scores := map[string]*float64{"coA": fp(1.5), "coB": nil}

	res := ComputeProgramOutcomes(links, scores, nil, cfg)
	if len(res) != 1 || res[0].DirectScore != 1.5 || res[0].Contributing != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestComputeProgramOutcomes_NoContributionNoResult(t *testing.T) {
	cfg := DefaultConfig()
	links := []COPOLink{{OutcomeID: "coA", ProgramOutcomeID: "po1", Correlation: 3}}
	scores := map[string]*float64{"coA": nil}

	if res := ComputeProgramOutcomes(links, scores, nil, cfg); len(res) != 0 {
		t.Fatalf("expected no results, got %+v", res)
	}
	// A CO with zero mappings contributes nowhere, silently.
	if res := ComputeProgramOutcomes(nil, map[string]*float64{"coA": fp(2.0)}, nil, cfg); len(res) != 0 {
		t.Fatalf("expected no results, got %+v", res)
	}
}

func TestComputeProgramOutcomes_IndirectBlend(t *testing.T) {
	cfg := DefaultConfig()
	links := []COPOLink{{OutcomeID: "coA", ProgramOutcomeID: "po1", Correlation: 3}}
	scores := map[string]*float64{"coA": fp(2.0)}
	surveys := map[string]Survey{"po1": {Responses: 100, AverageScore: 2.8}}

	r := ComputeProgramOutcomes(links, scores, surveys, cfg)[0]
	want := round2(2.0*0.8 + 2.8*0.2) // 2.16
	if r.FinalScore != want {
		t.Fatalf("final = %v, want %v", r.FinalScore, want)
	}
	if r.IndirectScore == nil || *r.IndirectScore != 2.8 {
		t.Fatalf("indirect = %v, want 2.8", r.IndirectScore)
	}
}

func TestComputeProgramOutcomes_MultiplePOsKeepOrder(t *testing.T) {
	cfg := DefaultConfig()
	links := []COPOLink{
		{OutcomeID: "coA", ProgramOutcomeID: "po2", Correlation: 1},
		{OutcomeID: "coA", ProgramOutcomeID: "po1", Correlation: 3},
	}
	scores := map[string]*float64{"coA": fp(1.0)}

	res := ComputeProgramOutcomes(links, scores, nil, cfg)
	if len(res) != 2 {
		t.Fatalf("got %d results", len(res))
	}
	if res[0].ProgramOutcomeID != "po2" || res[1].ProgramOutcomeID != "po1" {
		t.Fatalf("order not first-seen: %+v", res)
	}
}

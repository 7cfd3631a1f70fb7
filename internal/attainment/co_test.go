package attainment

import (
	"reflect"
	"testing"
)

// snapshot with one CO and whatever assessments the test needs.
func snapOneCO(assessments ...AssessmentInput) CourseSnapshot {
	return CourseSnapshot{
		CourseID:    "course-1",
		Outcomes:    []OutcomeInput{{ID: "co1", Code: "CO1"}},
		Assessments: assessments,
		Surveys:     map[string]Survey{},
	}
}

func ia1AllPass() AssessmentInput {
	return AssessmentInput{
		ID:         "a-ia1",
		Category:   CategoryIA1,
		Components: []Component{{ID: "q1", OutcomeID: "co1", MaxMarks: 10}},
		Marks: []Mark{
			{RollNo: "S1", ComponentID: "q1", Marks: 9},
			{RollNo: "S2", ComponentID: "q1", Marks: 8},
		},
	}
}

func TestComputeCourse_WeightExclusion(t *testing.T) {
	// Only IA1 has data. With weights 0.2/0.2/0.6 and IA1 at level 3, the
	// blend must renormalize over the included weight only: direct == 3.0,
	// not 3.0*0.2.
	cfg := DefaultConfig()
	res := ComputeCourse(snapOneCO(ia1AllPass()), cfg)
	if len(res) != 1 {
		t.Fatalf("got %d results", len(res))
	}
	r := res[0]
	if r.Err != nil {
		t.Fatalf("unexpected err: %v", r.Err)
	}
	if r.DirectScore == nil || *r.DirectScore != 3.0 {
		t.Fatalf("direct = %v, want 3.0", fv(r.DirectScore))
	}
	if r.FinalScore == nil || *r.FinalScore != 3.0 {
		t.Fatalf("final = %v, want 3.0", fv(r.FinalScore))
	}
	if r.Level != Level3 {
		t.Fatalf("level = %v, want %v", r.Level, Level3)
	}
	if _, ok := r.Categories[CategoryIA2]; ok {
		t.Fatal("IA2 must have no category result")
	}
}

func TestComputeCourse_NoDataPropagation(t *testing.T) {
	// CO with zero tagged components: final nil, LEVEL_0, and the result
	// is distinguishable from a CO scoring literally 0%.
	cfg := DefaultConfig()
	a := AssessmentInput{
		ID:       "a-ia1",
		Category: CategoryIA1,
		// components all belong to another outcome
		Components: []Component{{ID: "qx", OutcomeID: "co-other", MaxMarks: 10}},
		Marks:      []Mark{{RollNo: "S1", ComponentID: "qx", Marks: 2}},
	}
	res := ComputeCourse(snapOneCO(a), cfg)
	r := res[0]
	if r.DirectScore != nil || r.FinalScore != nil {
		t.Fatalf("expected nil scores, got direct=%v final=%v", fv(r.DirectScore), fv(r.FinalScore))
	}
	if r.Level != Level0 {
		t.Fatalf("level = %v, want LEVEL_0", r.Level)
	}
	if len(r.Categories) != 0 {
		t.Fatalf("expected no category results, got %v", r.Categories)
	}
}

func TestComputeCourse_RealZeroIsNotNoData(t *testing.T) {
	cfg := DefaultConfig()
	a := AssessmentInput{
		ID:         "a-ia1",
		Category:   CategoryIA1,
		Components: []Component{{ID: "q1", OutcomeID: "co1", MaxMarks: 10}},
		Marks:      []Mark{{RollNo: "S1", ComponentID: "q1", Marks: 1}},
	}
	res := ComputeCourse(snapOneCO(a), cfg)
	r := res[0]
	if r.FinalScore == nil || *r.FinalScore != 0.0 {
		t.Fatalf("final = %v, want 0.0 (present)", fv(r.FinalScore))
	}
	cat := r.Categories[CategoryIA1]
	if cat.Percentage == nil || *cat.Percentage != 0.0 {
		t.Fatalf("IA1 pct = %v, want 0.0 (present)", fv(cat.Percentage))
	}
}

func TestComputeCourse_IndirectBlend(t *testing.T) {
	cfg := DefaultConfig() // direct 0.8, indirect 0.2
	snap := snapOneCO(ia1AllPass())
	snap.Surveys["co1"] = Survey{Responses: 40, AverageScore: 2.5}

	r := ComputeCourse(snap, cfg)[0]
	if r.IndirectScore == nil || *r.IndirectScore != 2.5 {
		t.Fatalf("indirect = %v, want 2.5", fv(r.IndirectScore))
	}
	want := round2(3.0*0.8 + 2.5*0.2) // 2.9
	if r.FinalScore == nil || *r.FinalScore != want {
		t.Fatalf("final = %v, want %v", fv(r.FinalScore), want)
	}
}

func TestComputeCourse_ZeroResponseSurveyIgnored(t *testing.T) {
	cfg := DefaultConfig()
	snap := snapOneCO(ia1AllPass())
	snap.Surveys["co1"] = Survey{Responses: 0, AverageScore: 1.0}

	r := ComputeCourse(snap, cfg)[0]
	if r.IndirectScore != nil {
		t.Fatalf("indirect = %v, want nil for empty survey", fv(r.IndirectScore))
	}
	if r.FinalScore == nil || *r.FinalScore != 3.0 {
		t.Fatalf("final = %v, want direct passthrough 3.0", fv(r.FinalScore))
	}
}

func TestComputeCourse_MultiCategoryBlend(t *testing.T) {
	cfg := DefaultConfig()
	ia1 := ia1AllPass() // level 3
	end := AssessmentInput{
		ID:         "a-end",
		Category:   CategoryEndSem,
		Components: []Component{{ID: "e1", OutcomeID: "co1", MaxMarks: 20}},
		Marks: []Mark{
			{RollNo: "S1", ComponentID: "e1", Marks: 13}, // 65% >= 60% target
			{RollNo: "S2", ComponentID: "e1", Marks: 5},
		},
	}
	// End-sem: 50% passing => Level2.
	r := ComputeCourse(snapOneCO(ia1, end), cfg)[0]
	want := round2((3.0*0.2 + 2.0*0.6) / (0.2 + 0.6)) // 2.25
	if r.DirectScore == nil || *r.DirectScore != want {
		t.Fatalf("direct = %v, want %v", fv(r.DirectScore), want)
	}
}

func TestComputeCourse_PerOutcomeTargetOverride(t *testing.T) {
	cfg := DefaultConfig()
	tp := 90.0
	snap := snapOneCO(AssessmentInput{
		ID:         "a-ia1",
		Category:   CategoryIA1,
		Components: []Component{{ID: "q1", OutcomeID: "co1", MaxMarks: 10}},
		Marks:      []Mark{{RollNo: "S1", ComponentID: "q1", Marks: 8}},
	})
	snap.Outcomes[0].TargetPercent = &tp

	r := ComputeCourse(snap, cfg)[0]
	// 8/10 meets the global 60% target but not the per-CO 90% override.
	if p := r.Categories[CategoryIA1].Percentage; p == nil || *p != 0.0 {
		t.Fatalf("IA1 pct = %v, want 0.0", fv(p))
	}
}

func TestComputeCourse_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	snap := snapOneCO(ia1AllPass())
	snap.Surveys["co1"] = Survey{Responses: 10, AverageScore: 2.0}

	a := ComputeCourse(snap, cfg)
	b := ComputeCourse(snap, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("recompute with unchanged inputs differed:\n%v\n%v", a, b)
	}
}

func fv(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

package outcomes_test

import (
	"context"
	"testing"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
	"github.com/outcome-metrics/attainment-service/internal/db"
	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

func openSQLiteStore(t *testing.T) *outcomes.SQLStore {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return outcomes.NewSQLStore(dbh, "sqlite")
}

func Test_SQLStore_EndToEnd_SQLite(t *testing.T) {
	ctx := context.Background()
	st := openSQLiteStore(t)
	svc := outcomes.NewService(st, fixedNow)

	seedCourse(t, st, "c1", "c1-co1", "c1-co2")
	if err := st.PutProgramOutcome(ctx, outcomes.ProgramOutcome{ID: "po1", Code: "PO1", Description: "Engineering knowledge"}); err != nil {
		t.Fatal(err)
	}
	if err := st.PutMapping(ctx, outcomes.Mapping{OutcomeID: "c1-co1", ProgramOutcomeID: "po1", Correlation: 3}); err != nil {
		t.Fatal(err)
	}
	if err := st.PutMapping(ctx, outcomes.Mapping{OutcomeID: "c1-co2", ProgramOutcomeID: "po1", Correlation: 1}); err != nil {
		t.Fatal(err)
	}
	if err := st.PutSurvey(ctx, outcomes.SurveyAggregate{
		Scope: outcomes.SurveyScopePO, RefID: "po1", Responses: 60, AverageScore: 2.4,
	}); err != nil {
		t.Fatal(err)
	}

	coRes, poRes, err := svc.RecomputeCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(coRes) != 2 || len(poRes) != 1 {
		t.Fatalf("results: %d COs, %d POs", len(coRes), len(poRes))
	}

	coRows, err := st.ListCOAttainment(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(coRows) != 2 {
		t.Fatalf("got %d CO rows", len(coRows))
	}
	if coRows[0].FinalScore == nil || *coRows[0].FinalScore != 3.0 {
		t.Fatalf("CO1 final wrong: %+v", coRows[0])
	}
	if coRows[0].IA1Percent == nil || *coRows[0].IA1Percent != 100.0 {
		t.Fatalf("CO1 IA1 percent wrong: %+v", coRows[0])
	}
	if coRows[0].IA2Percent != nil {
		t.Fatalf("CO1 IA2 must be null (no assessment): %+v", coRows[0])
	}

	poRows, err := st.ListPOAttainment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(poRows) != 1 {
		t.Fatalf("got %d PO rows", len(poRows))
	}
	// direct (3*3+0*1)/4 = 2.25, blended with survey 2.4: 2.25*0.8+2.4*0.2 = 2.28
	if poRows[0].DirectScore != 2.25 || poRows[0].FinalScore != 2.28 {
		t.Fatalf("PO row wrong: %+v", poRows[0])
	}
}

func Test_SQLStore_EngineConfig_SeedsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	st := openSQLiteStore(t)

	cfg, err := st.EngineConfig(ctx)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if cfg != attainment.DefaultConfig() {
		t.Fatalf("expected defaults on first read, got %+v", cfg)
	}

	cfg.Level3Threshold = 70
	cfg.DirectWeight, cfg.IndirectWeight = 0.9, 0.1
	if err := st.PutEngineConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := st.EngineConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("config did not round-trip: %+v vs %+v", got, cfg)
	}
}

func Test_SQLStore_ReplaceMarks_Wholesale(t *testing.T) {
	ctx := context.Background()
	st := openSQLiteStore(t)
	seedCourse(t, st, "c1", "c1-co1", "c1-co2")

	// Replace with a single row: the snapshot must reflect only that row.
	if err := st.ReplaceMarks(ctx, "c1-ia1", []outcomes.MarkRow{
		{RollNo: "S9", ComponentID: "c1-ia1-q1", Marks: 10},
	}); err != nil {
		t.Fatal(err)
	}
	snap, err := st.CourseSnapshot(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Assessments) != 1 {
		t.Fatalf("got %d assessments", len(snap.Assessments))
	}
	if n := len(snap.Assessments[0].Marks); n != 1 {
		t.Fatalf("got %d marks after replace, want 1", n)
	}
	if snap.Assessments[0].Marks[0].RollNo != "S9" {
		t.Fatalf("unexpected mark row: %+v", snap.Assessments[0].Marks[0])
	}
}

func Test_SQLStore_AssessmentCategorySlot(t *testing.T) {
	ctx := context.Background()
	st := openSQLiteStore(t)
	if err := st.PutCourse(ctx, outcomes.Course{ID: "c1", Code: "c1", Name: "C"}); err != nil {
		t.Fatal(err)
	}
	if err := st.PutAssessment(ctx, outcomes.Assessment{ID: "a1", CourseID: "c1", Category: attainment.CategoryIA1, MaxMarks: 20}); err != nil {
		t.Fatal(err)
	}
	// A second assessment in the same category takes over the slot.
	if err := st.PutAssessment(ctx, outcomes.Assessment{ID: "a2", CourseID: "c1", Category: attainment.CategoryIA1, MaxMarks: 30}); err != nil {
		t.Fatal(err)
	}
	as, err := st.ListAssessments(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(as) != 1 || as[0].ID != "a2" {
		t.Fatalf("IA1 slot not replaced: %+v", as)
	}
}

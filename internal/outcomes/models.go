package outcomes

import (
	"time"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
)

type Course struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ProgramOutcome struct {
	ID          string `json:"id"`
	Code        string `json:"code"` // e.g. PO1
	Description string `json:"description,omitempty"`
}

type CourseOutcome struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Code        string `json:"code"` // unique within course, e.g. CO1
	Description string `json:"description,omitempty"`
	// Per-CO pass threshold override; nil falls back to the configured
	// CO target percent.
	TargetPercent *float64 `json:"target_percent,omitempty"`
}

type Assessment struct {
	ID       string              `json:"id"`
	CourseID string              `json:"course_id"`
	Category attainment.Category `json:"category"` // at most one per category per course
	MaxMarks float64             `json:"max_marks"`
}

// Component is a question or rubric item, tagged to exactly one CO.
type Component struct {
	ID           string  `json:"id"`
	AssessmentID string  `json:"assessment_id"`
	OutcomeID    string  `json:"outcome_id"`
	Label        string  `json:"label,omitempty"` // e.g. Q1, Q2b
	MaxMarks     float64 `json:"max_marks"`
}

// MarkRow is one student's marks for one component. Mark uploads replace
// an assessment's rows wholesale.
type MarkRow struct {
	RollNo      string  `json:"roll_no"`
	ComponentID string  `json:"component_id"`
	Marks       float64 `json:"marks"`
}

// Mapping is one articulation matrix cell, unique per (CO, PO) pair.
type Mapping struct {
	OutcomeID        string `json:"outcome_id"`
	ProgramOutcomeID string `json:"program_outcome_id"`
	Correlation      int    `json:"correlation"` // 1 low, 2 moderate, 3 high
}

type SurveyScope string

const (
	SurveyScopeCO SurveyScope = "co"
	SurveyScopePO SurveyScope = "po"
)

// SurveyAggregate holds externally computed Likert survey results on the
// 0-3 scale. Zero responses is equivalent to no survey.
type SurveyAggregate struct {
	Scope        SurveyScope `json:"scope"`
	RefID        string      `json:"ref_id"` // CO or PO id
	Responses    int         `json:"responses"`
	AverageScore float64     `json:"average_score"`
}

// COAttainmentRow is the persisted, derived attainment for one CO.
// Overwritten on every recompute. Nil fields mean "no data", which readers
// must keep distinct from zero.
type COAttainmentRow struct {
	OutcomeID string `json:"outcome_id"`
	CourseID  string `json:"course_id"`
	Code      string `json:"code"`

	IA1Percent    *float64 `json:"ia1_percent"`
	IA1Level      *int     `json:"ia1_level"`
	IA2Percent    *float64 `json:"ia2_percent"`
	IA2Level      *int     `json:"ia2_level"`
	EndSemPercent *float64 `json:"end_sem_percent"`
	EndSemLevel   *int     `json:"end_sem_level"`

	DirectScore   *float64 `json:"direct_score"`
	IndirectScore *float64 `json:"indirect_score"`
	FinalScore    *float64 `json:"final_score"`
	Level         int      `json:"level"`

	ComputedAt time.Time `json:"computed_at"`
}

// POAttainmentRow is the persisted attainment for one PO, recomputed
// across all contributing courses on every trigger.
type POAttainmentRow struct {
	ProgramOutcomeID string    `json:"program_outcome_id"`
	DirectScore      float64   `json:"direct_score"`
	IndirectScore    *float64  `json:"indirect_score"`
	FinalScore       float64   `json:"final_score"`
	Level            int       `json:"level"`
	Contributing     int       `json:"contributing"`
	ComputedAt       time.Time `json:"computed_at"`
}

// rowFromResult flattens an engine CO result into its storage row.
func rowFromResult(courseID string, res attainment.COResult, now time.Time) COAttainmentRow {
	row := COAttainmentRow{
		OutcomeID:     res.OutcomeID,
		CourseID:      courseID,
		Code:          res.Code,
		DirectScore:   res.DirectScore,
		IndirectScore: res.IndirectScore,
		FinalScore:    res.FinalScore,
		Level:         int(res.Level),
		ComputedAt:    now,
	}
	if c, ok := res.Categories[attainment.CategoryIA1]; ok {
		row.IA1Percent, row.IA1Level = c.Percentage, levelPtr(c.Level)
	}
	if c, ok := res.Categories[attainment.CategoryIA2]; ok {
		row.IA2Percent, row.IA2Level = c.Percentage, levelPtr(c.Level)
	}
	if c, ok := res.Categories[attainment.CategoryEndSem]; ok {
		row.EndSemPercent, row.EndSemLevel = c.Percentage, levelPtr(c.Level)
	}
	return row
}

func levelPtr(l *attainment.Level) *int {
	if l == nil {
		return nil
	}
	n := int(*l)
	return &n
}

package attainment

// Category identifies an assessment slot within a course. A course has at
// most one assessment per category.
type Category string

const (
	CategoryIA1    Category = "IA1"
	CategoryIA2    Category = "IA2"
	CategoryEndSem Category = "ENDSEM"
)

// Categories lists the blendable categories in display order.
var Categories = []Category{CategoryIA1, CategoryIA2, CategoryEndSem}

// CategoryWeight returns the configured blend weight for a category.
func CategoryWeight(c Category, cfg Config) float64 {
	switch c {
	case CategoryIA1:
		return cfg.IA1Weight
	case CategoryIA2:
		return cfg.IA2Weight
	case CategoryEndSem:
		return cfg.EndSemWeight
	default:
		return 0
	}
}

// Component is one question/rubric item of an assessment, tagged to
// exactly one course outcome.
type Component struct {
	ID        string
	OutcomeID string
	MaxMarks  float64
}

// Mark is one student's marks for one component.
type Mark struct {
	RollNo      string
	ComponentID string
	Marks       float64
}

// AssessmentInput is one assessment of the course being recomputed, with
// all of its components and marks already loaded.
type AssessmentInput struct {
	ID         string
	Category   Category
	Components []Component
	Marks      []Mark
}

// OutcomeInput is one course outcome. TargetPercent overrides the
// configuration's CO target when non-nil (per-CO proficiency targets).
type OutcomeInput struct {
	ID            string
	Code          string
	TargetPercent *float64
}

// Survey is an externally aggregated Likert survey result on the 0-3 scale.
// Zero responses behaves the same as an absent survey.
type Survey struct {
	Responses    int
	AverageScore float64
}

// CourseSnapshot is everything the CO phase needs for one course, loaded
// up front so the engine runs without I/O.
type CourseSnapshot struct {
	CourseID    string
	Outcomes    []OutcomeInput
	Assessments []AssessmentInput
	Surveys     map[string]Survey // keyed by outcome ID
}

// CategoryResult is the aggregator+classifier output for one assessment
// category. Nil fields mean "no data" for the category, which is distinct
// from a computed zero.
type CategoryResult struct {
	Percentage *float64
	Level      *Level
}

// COResult is the computed attainment for one course outcome.
type COResult struct {
	OutcomeID  string
	Code       string
	Categories map[Category]CategoryResult

	DirectScore   *float64 // nil when no category had data
	IndirectScore *float64 // nil when no usable survey
	FinalScore    *float64 // nil propagates "no data"
	Level         Level

	// Err records a per-outcome computation failure. Siblings are
	// unaffected; a result with Err set carries no scores.
	Err error
}

// COPOLink is one articulation matrix cell. Correlation is the integer
// weight 1 (low), 2 (moderate) or 3 (high).
type COPOLink struct {
	OutcomeID        string
	ProgramOutcomeID string
	Correlation      int
}

// POResult is the computed attainment for one program outcome. POs with no
// contributing mappings produce no result at all rather than a zeroed one.
type POResult struct {
	ProgramOutcomeID string
	DirectScore      float64
	IndirectScore    *float64
	FinalScore       float64
	Level            Level
	Contributing     int // mappings that carried a score into the average
}

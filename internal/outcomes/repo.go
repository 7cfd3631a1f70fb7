package outcomes

import (
	"context"
	"errors"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
)

// ErrNotFound is returned for lookups of entities that do not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary. Reference data is long-lived and
// edited by staff; marks are bulk-replaced per assessment; attainment rows
// are derived and overwritten by the service, read-only to everyone else.
type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)

	PutProgramOutcome(ctx context.Context, po ProgramOutcome) error
	ListProgramOutcomes(ctx context.Context) ([]ProgramOutcome, error)

	PutCourseOutcome(ctx context.Context, co CourseOutcome) error
	ListCourseOutcomes(ctx context.Context, courseID string) ([]CourseOutcome, error)

	// PutAssessment upserts by (course, category): a course has at most
	// one assessment per category.
	PutAssessment(ctx context.Context, a Assessment) error
	ListAssessments(ctx context.Context, courseID string) ([]Assessment, error)

	PutComponent(ctx context.Context, c Component) error
	ListComponents(ctx context.Context, assessmentID string) ([]Component, error)

	// ReplaceMarks deletes the assessment's existing rows and inserts the
	// given ones (wholesale upload semantics, not incremental patch).
	ReplaceMarks(ctx context.Context, assessmentID string, rows []MarkRow) error

	PutMapping(ctx context.Context, m Mapping) error
	// MappingsForOutcomes returns the matrix cells whose CO is in ids.
	MappingsForOutcomes(ctx context.Context, ids []string) ([]Mapping, error)
	// MappingsForProgramOutcomes returns all cells touching the given POs,
	// across every course.
	MappingsForProgramOutcomes(ctx context.Context, poIDs []string) ([]Mapping, error)

	PutSurvey(ctx context.Context, s SurveyAggregate) error
	Surveys(ctx context.Context, scope SurveyScope) (map[string]attainment.Survey, error)

	// EngineConfig returns the singleton coefficient row, seeding defaults
	// when none exists yet.
	EngineConfig(ctx context.Context) (attainment.Config, error)
	PutEngineConfig(ctx context.Context, cfg attainment.Config) error

	// CourseSnapshot loads everything the CO phase needs in one call.
	CourseSnapshot(ctx context.Context, courseID string) (attainment.CourseSnapshot, error)

	UpsertCOAttainment(ctx context.Context, row COAttainmentRow) error
	ListCOAttainment(ctx context.Context, courseID string) ([]COAttainmentRow, error)
	// COFinalScores returns outcomeID -> final score for the given COs;
	// COs without a computed row (or with a null final score) map to nil.
	COFinalScores(ctx context.Context, outcomeIDs []string) (map[string]*float64, error)

	UpsertPOAttainment(ctx context.Context, row POAttainmentRow) error
	ListPOAttainment(ctx context.Context) ([]POAttainmentRow, error)
}

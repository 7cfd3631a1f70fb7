package outcomes

import (
	"context"
	"sort"
	"sync"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
)

// memoryStore backs offline runs and tests. Same contract as the SQL
// store, nothing shared with it.
type memoryStore struct {
	mu              sync.RWMutex
	courses         map[string]Course
	programOutcomes map[string]ProgramOutcome
	courseOutcomes  map[string]CourseOutcome
	assessments     map[string]Assessment
	components      map[string]Component
	marks           map[string][]MarkRow // by assessment ID
	mappings        map[[2]string]Mapping
	surveys         map[SurveyScope]map[string]SurveyAggregate
	engineCfg       *attainment.Config
	coRows          map[string]COAttainmentRow
	poRows          map[string]POAttainmentRow
}

func NewInMemoryStore() Store {
	return &memoryStore{
		courses:         map[string]Course{},
		programOutcomes: map[string]ProgramOutcome{},
		courseOutcomes:  map[string]CourseOutcome{},
		assessments:     map[string]Assessment{},
		components:      map[string]Component{},
		marks:           map[string][]MarkRow{},
		mappings:        map[[2]string]Mapping{},
		surveys: map[SurveyScope]map[string]SurveyAggregate{
			SurveyScopeCO: {},
			SurveyScopePO: {},
		},
		coRows: map[string]COAttainmentRow{},
		poRows: map[string]POAttainmentRow{},
	}
}

func (m *memoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) ListCourses(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryStore) PutProgramOutcome(_ context.Context, po ProgramOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programOutcomes[po.ID] = po
	return nil
}

func (m *memoryStore) ListProgramOutcomes(_ context.Context) ([]ProgramOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProgramOutcome, 0, len(m.programOutcomes))
	for _, po := range m.programOutcomes {
		out = append(out, po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryStore) PutCourseOutcome(_ context.Context, co CourseOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courseOutcomes[co.ID] = co
	return nil
}

func (m *memoryStore) ListCourseOutcomes(_ context.Context, courseID string) ([]CourseOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []CourseOutcome
	for _, co := range m.courseOutcomes {
		if co.CourseID == courseID {
			out = append(out, co)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryStore) PutAssessment(_ context.Context, a Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// one assessment per (course, category): replace any existing slot
	for id, other := range m.assessments {
		if other.CourseID == a.CourseID && other.Category == a.Category && id != a.ID {
			delete(m.assessments, id)
		}
	}
	m.assessments[a.ID] = a
	return nil
}

func (m *memoryStore) ListAssessments(_ context.Context, courseID string) ([]Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Assessment
	for _, a := range m.assessments {
		if a.CourseID == courseID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *memoryStore) PutComponent(_ context.Context, c Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[c.ID] = c
	return nil
}

func (m *memoryStore) ListComponents(_ context.Context, assessmentID string) ([]Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Component
	for _, c := range m.components {
		if c.AssessmentID == assessmentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m *memoryStore) ReplaceMarks(_ context.Context, assessmentID string, rows []MarkRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]MarkRow, len(rows))
	copy(cp, rows)
	m.marks[assessmentID] = cp
	return nil
}

func (m *memoryStore) PutMapping(_ context.Context, mp Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[[2]string{mp.OutcomeID, mp.ProgramOutcomeID}] = mp
	return nil
}

func (m *memoryStore) MappingsForOutcomes(_ context.Context, ids []string) ([]Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := toSet(ids)
	var out []Mapping
	for _, mp := range m.mappings {
		if _, ok := want[mp.OutcomeID]; ok {
			out = append(out, mp)
		}
	}
	sortMappings(out)
	return out, nil
}

func (m *memoryStore) MappingsForProgramOutcomes(_ context.Context, poIDs []string) ([]Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := toSet(poIDs)
	var out []Mapping
	for _, mp := range m.mappings {
		if _, ok := want[mp.ProgramOutcomeID]; ok {
			out = append(out, mp)
		}
	}
	sortMappings(out)
	return out, nil
}

func (m *memoryStore) PutSurvey(_ context.Context, s SurveyAggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys[s.Scope][s.RefID] = s
	return nil
}

func (m *memoryStore) Surveys(_ context.Context, scope SurveyScope) (map[string]attainment.Survey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]attainment.Survey{}
	for id, s := range m.surveys[scope] {
		out[id] = attainment.Survey{Responses: s.Responses, AverageScore: s.AverageScore}
	}
	return out, nil
}

func (m *memoryStore) EngineConfig(_ context.Context) (attainment.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engineCfg == nil {
		cfg := attainment.DefaultConfig()
		m.engineCfg = &cfg
	}
	return *m.engineCfg, nil
}

func (m *memoryStore) PutEngineConfig(_ context.Context, cfg attainment.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engineCfg = &cfg
	return nil
}

func (m *memoryStore) CourseSnapshot(ctx context.Context, courseID string) (attainment.CourseSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.courses[courseID]; !ok {
		return attainment.CourseSnapshot{}, ErrNotFound
	}
	snap := attainment.CourseSnapshot{CourseID: courseID, Surveys: map[string]attainment.Survey{}}

	var cos []CourseOutcome
	for _, co := range m.courseOutcomes {
		if co.CourseID == courseID {
			cos = append(cos, co)
		}
	}
	sort.Slice(cos, func(i, j int) bool { return cos[i].Code < cos[j].Code })
	for _, co := range cos {
		snap.Outcomes = append(snap.Outcomes, attainment.OutcomeInput{
			ID: co.ID, Code: co.Code, TargetPercent: co.TargetPercent,
		})
		if s, ok := m.surveys[SurveyScopeCO][co.ID]; ok {
			snap.Surveys[co.ID] = attainment.Survey{Responses: s.Responses, AverageScore: s.AverageScore}
		}
	}

	for _, a := range m.assessments {
		if a.CourseID != courseID {
			continue
		}
		ai := attainment.AssessmentInput{ID: a.ID, Category: a.Category}
		for _, c := range m.components {
			if c.AssessmentID == a.ID {
				ai.Components = append(ai.Components, attainment.Component{
					ID: c.ID, OutcomeID: c.OutcomeID, MaxMarks: c.MaxMarks,
				})
			}
		}
		for _, mr := range m.marks[a.ID] {
			ai.Marks = append(ai.Marks, attainment.Mark{
				RollNo: mr.RollNo, ComponentID: mr.ComponentID, Marks: mr.Marks,
			})
		}
		snap.Assessments = append(snap.Assessments, ai)
	}
	sort.Slice(snap.Assessments, func(i, j int) bool {
		return snap.Assessments[i].Category < snap.Assessments[j].Category
	})
	return snap, nil
}

func (m *memoryStore) UpsertCOAttainment(_ context.Context, row COAttainmentRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coRows[row.OutcomeID] = row
	return nil
}

func (m *memoryStore) ListCOAttainment(_ context.Context, courseID string) ([]COAttainmentRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []COAttainmentRow
	for _, r := range m.coRows {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryStore) COFinalScores(_ context.Context, outcomeIDs []string) (map[string]*float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]*float64{}
	for _, id := range outcomeIDs {
		if r, ok := m.coRows[id]; ok && r.FinalScore != nil {
			v := *r.FinalScore
			out[id] = &v
		} else {
			out[id] = nil
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertPOAttainment(_ context.Context, row POAttainmentRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poRows[row.ProgramOutcomeID] = row
	return nil
}

func (m *memoryStore) ListPOAttainment(_ context.Context) ([]POAttainmentRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]POAttainmentRow, 0, len(m.poRows))
	for _, r := range m.poRows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProgramOutcomeID < out[j].ProgramOutcomeID })
	return out, nil
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func sortMappings(ms []Mapping) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].ProgramOutcomeID != ms[j].ProgramOutcomeID {
			return ms[i].ProgramOutcomeID < ms[j].ProgramOutcomeID
		}
		return ms[i].OutcomeID < ms[j].OutcomeID
	})
}

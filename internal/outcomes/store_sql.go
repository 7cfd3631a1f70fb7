package outcomes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
)

// SQLStore works against both drivers bootstrapped by internal/db
// ("sqlite" and "postgres"); $n placeholders are valid for both.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,code,name) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, name=EXCLUDED.name`,
		c.ID, c.Code, c.Name)
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,code,name FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Code, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,code,name FROM courses ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutProgramOutcome(ctx context.Context, po ProgramOutcome) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO program_outcomes (id,code,description) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, description=EXCLUDED.description`,
		po.ID, po.Code, po.Description)
	return err
}

func (s *SQLStore) ListProgramOutcomes(ctx context.Context) ([]ProgramOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,code,description FROM program_outcomes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProgramOutcome
	for rows.Next() {
		var po ProgramOutcome
		if err := rows.Scan(&po.ID, &po.Code, &po.Description); err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutCourseOutcome(ctx context.Context, co CourseOutcome) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO course_outcomes (id,course_id,code,description,target_percent)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, description=EXCLUDED.description, target_percent=EXCLUDED.target_percent`,
		co.ID, co.CourseID, co.Code, co.Description, co.TargetPercent)
	return err
}

func (s *SQLStore) ListCourseOutcomes(ctx context.Context, courseID string) ([]CourseOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,code,description,target_percent
		FROM course_outcomes WHERE course_id=$1 ORDER BY code`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CourseOutcome
	for rows.Next() {
		var co CourseOutcome
		if err := rows.Scan(&co.ID, &co.CourseID, &co.Code, &co.Description, &co.TargetPercent); err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutAssessment(ctx context.Context, a Assessment) error {
	// replace the category slot if another assessment already holds it
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM assessments WHERE course_id=$1 AND category=$2 AND id<>$3`,
		a.CourseID, a.Category, a.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO assessments (id,course_id,category,max_marks)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET category=EXCLUDED.category, max_marks=EXCLUDED.max_marks`,
		a.ID, a.CourseID, string(a.Category), a.MaxMarks)
	return err
}

func (s *SQLStore) ListAssessments(ctx context.Context, courseID string) ([]Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,category,max_marks
		FROM assessments WHERE course_id=$1 ORDER BY category`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assessment
	for rows.Next() {
		var a Assessment
		var cat string
		if err := rows.Scan(&a.ID, &a.CourseID, &cat, &a.MaxMarks); err != nil {
			return nil, err
		}
		a.Category = attainment.Category(cat)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutComponent(ctx context.Context, c Component) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO assessment_components (id,assessment_id,outcome_id,label,max_marks)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET outcome_id=EXCLUDED.outcome_id, label=EXCLUDED.label, max_marks=EXCLUDED.max_marks`,
		c.ID, c.AssessmentID, c.OutcomeID, c.Label, c.MaxMarks)
	return err
}

func (s *SQLStore) ListComponents(ctx context.Context, assessmentID string) ([]Component, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,assessment_id,outcome_id,label,max_marks
		FROM assessment_components WHERE assessment_id=$1 ORDER BY label`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.AssessmentID, &c.OutcomeID, &c.Label, &c.MaxMarks); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceMarks swaps the assessment's marks wholesale in one transaction.
func (s *SQLStore) ReplaceMarks(ctx context.Context, assessmentID string, rows []MarkRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM student_marks
		WHERE component_id IN (SELECT id FROM assessment_components WHERE assessment_id=$1)`,
		assessmentID); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO student_marks (component_id,roll_no,marks)
			VALUES ($1,$2,$3)
			ON CONFLICT (component_id,roll_no) DO UPDATE SET marks=EXCLUDED.marks`,
			r.ComponentID, r.RollNo, r.Marks); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) PutMapping(ctx context.Context, m Mapping) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO co_po_map (outcome_id,program_outcome_id,correlation)
		VALUES ($1,$2,$3)
		ON CONFLICT (outcome_id,program_outcome_id) DO UPDATE SET correlation=EXCLUDED.correlation`,
		m.OutcomeID, m.ProgramOutcomeID, m.Correlation)
	return err
}

func (s *SQLStore) MappingsForOutcomes(ctx context.Context, ids []string) ([]Mapping, error) {
	return s.mappingsWhere(ctx, `outcome_id`, ids)
}

func (s *SQLStore) MappingsForProgramOutcomes(ctx context.Context, poIDs []string) ([]Mapping, error) {
	return s.mappingsWhere(ctx, `program_outcome_id`, poIDs)
}

func (s *SQLStore) mappingsWhere(ctx context.Context, col string, ids []string) ([]Mapping, error) {
	var out []Mapping
	// bounded fan-out (a course's COs / a handful of POs), so per-id
	// queries keep the SQL portable across both drivers
	for _, id := range ids {
		rows, err := s.db.QueryContext(ctx, `SELECT outcome_id,program_outcome_id,correlation
			FROM co_po_map WHERE `+col+`=$1 ORDER BY program_outcome_id, outcome_id`, id)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var m Mapping
			if err := rows.Scan(&m.OutcomeID, &m.ProgramOutcomeID, &m.Correlation); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, m)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

func (s *SQLStore) PutSurvey(ctx context.Context, sv SurveyAggregate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO survey_aggregates (scope,ref_id,responses,average_score)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (scope,ref_id) DO UPDATE SET responses=EXCLUDED.responses, average_score=EXCLUDED.average_score`,
		string(sv.Scope), sv.RefID, sv.Responses, sv.AverageScore)
	return err
}

func (s *SQLStore) Surveys(ctx context.Context, scope SurveyScope) (map[string]attainment.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ref_id,responses,average_score
		FROM survey_aggregates WHERE scope=$1`, string(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]attainment.Survey{}
	for rows.Next() {
		var id string
		var sv attainment.Survey
		if err := rows.Scan(&id, &sv.Responses, &sv.AverageScore); err != nil {
			return nil, err
		}
		out[id] = sv
	}
	return out, rows.Err()
}

func (s *SQLStore) EngineConfig(ctx context.Context) (attainment.Config, error) {
	var cfg attainment.Config
	err := s.db.QueryRowContext(ctx, `SELECT co_target_marks_percent,
		level1_threshold,level2_threshold,level3_threshold,
		ia1_weight,ia2_weight,end_sem_weight,
		direct_weight,indirect_weight,po_target_level
		FROM engine_config WHERE id=1`).Scan(
		&cfg.COTargetMarksPercent,
		&cfg.Level1Threshold, &cfg.Level2Threshold, &cfg.Level3Threshold,
		&cfg.IA1Weight, &cfg.IA2Weight, &cfg.EndSemWeight,
		&cfg.DirectWeight, &cfg.IndirectWeight, &cfg.POTargetLevel)
	if errors.Is(err, sql.ErrNoRows) {
		cfg = attainment.DefaultConfig()
		if err := s.PutEngineConfig(ctx, cfg); err != nil {
			return attainment.Config{}, err
		}
		return cfg, nil
	}
	return cfg, err
}

func (s *SQLStore) PutEngineConfig(ctx context.Context, cfg attainment.Config) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO engine_config
		(id,co_target_marks_percent,level1_threshold,level2_threshold,level3_threshold,
		 ia1_weight,ia2_weight,end_sem_weight,direct_weight,indirect_weight,po_target_level,updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
		 co_target_marks_percent=EXCLUDED.co_target_marks_percent,
		 level1_threshold=EXCLUDED.level1_threshold,
		 level2_threshold=EXCLUDED.level2_threshold,
		 level3_threshold=EXCLUDED.level3_threshold,
		 ia1_weight=EXCLUDED.ia1_weight,
		 ia2_weight=EXCLUDED.ia2_weight,
		 end_sem_weight=EXCLUDED.end_sem_weight,
		 direct_weight=EXCLUDED.direct_weight,
		 indirect_weight=EXCLUDED.indirect_weight,
		 po_target_level=EXCLUDED.po_target_level,
		 updated_at=EXCLUDED.updated_at`,
		cfg.COTargetMarksPercent,
		cfg.Level1Threshold, cfg.Level2Threshold, cfg.Level3Threshold,
		cfg.IA1Weight, cfg.IA2Weight, cfg.EndSemWeight,
		cfg.DirectWeight, cfg.IndirectWeight, cfg.POTargetLevel,
		time.Now().Unix())
	return err
}

func (s *SQLStore) CourseSnapshot(ctx context.Context, courseID string) (attainment.CourseSnapshot, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return attainment.CourseSnapshot{}, err
	}
	snap := attainment.CourseSnapshot{CourseID: courseID, Surveys: map[string]attainment.Survey{}}

	cos, err := s.ListCourseOutcomes(ctx, courseID)
	if err != nil {
		return attainment.CourseSnapshot{}, err
	}
	coSurveys, err := s.Surveys(ctx, SurveyScopeCO)
	if err != nil {
		return attainment.CourseSnapshot{}, err
	}
	for _, co := range cos {
		snap.Outcomes = append(snap.Outcomes, attainment.OutcomeInput{
			ID: co.ID, Code: co.Code, TargetPercent: co.TargetPercent,
		})
		if sv, ok := coSurveys[co.ID]; ok {
			snap.Surveys[co.ID] = sv
		}
	}

	assessments, err := s.ListAssessments(ctx, courseID)
	if err != nil {
		return attainment.CourseSnapshot{}, err
	}
	for _, a := range assessments {
		ai := attainment.AssessmentInput{ID: a.ID, Category: a.Category}
		comps, err := s.ListComponents(ctx, a.ID)
		if err != nil {
			return attainment.CourseSnapshot{}, err
		}
		for _, c := range comps {
			ai.Components = append(ai.Components, attainment.Component{
				ID: c.ID, OutcomeID: c.OutcomeID, MaxMarks: c.MaxMarks,
			})
		}
		rows, err := s.db.QueryContext(ctx, `SELECT m.component_id, m.roll_no, m.marks
			FROM student_marks m
			JOIN assessment_components c ON c.id = m.component_id
			WHERE c.assessment_id=$1`, a.ID)
		if err != nil {
			return attainment.CourseSnapshot{}, err
		}
		for rows.Next() {
			var m attainment.Mark
			if err := rows.Scan(&m.ComponentID, &m.RollNo, &m.Marks); err != nil {
				rows.Close()
				return attainment.CourseSnapshot{}, err
			}
			ai.Marks = append(ai.Marks, m)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return attainment.CourseSnapshot{}, err
		}
		rows.Close()
		snap.Assessments = append(snap.Assessments, ai)
	}
	return snap, nil
}

func (s *SQLStore) UpsertCOAttainment(ctx context.Context, row COAttainmentRow) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO co_attainment
		(outcome_id,course_id,code,
		 ia1_percent,ia1_level,ia2_percent,ia2_level,end_sem_percent,end_sem_level,
		 direct_score,indirect_score,final_score,level,computed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (outcome_id) DO UPDATE SET
		 course_id=EXCLUDED.course_id, code=EXCLUDED.code,
		 ia1_percent=EXCLUDED.ia1_percent, ia1_level=EXCLUDED.ia1_level,
		 ia2_percent=EXCLUDED.ia2_percent, ia2_level=EXCLUDED.ia2_level,
		 end_sem_percent=EXCLUDED.end_sem_percent, end_sem_level=EXCLUDED.end_sem_level,
		 direct_score=EXCLUDED.direct_score, indirect_score=EXCLUDED.indirect_score,
		 final_score=EXCLUDED.final_score, level=EXCLUDED.level,
		 computed_at=EXCLUDED.computed_at`,
		row.OutcomeID, row.CourseID, row.Code,
		row.IA1Percent, row.IA1Level, row.IA2Percent, row.IA2Level,
		row.EndSemPercent, row.EndSemLevel,
		row.DirectScore, row.IndirectScore, row.FinalScore, row.Level,
		row.ComputedAt.Unix())
	return err
}

func (s *SQLStore) ListCOAttainment(ctx context.Context, courseID string) ([]COAttainmentRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome_id,course_id,code,
		ia1_percent,ia1_level,ia2_percent,ia2_level,end_sem_percent,end_sem_level,
		direct_score,indirect_score,final_score,level,computed_at
		FROM co_attainment WHERE course_id=$1 ORDER BY code`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []COAttainmentRow
	for rows.Next() {
		var r COAttainmentRow
		var at int64
		if err := rows.Scan(&r.OutcomeID, &r.CourseID, &r.Code,
			&r.IA1Percent, &r.IA1Level, &r.IA2Percent, &r.IA2Level,
			&r.EndSemPercent, &r.EndSemLevel,
			&r.DirectScore, &r.IndirectScore, &r.FinalScore, &r.Level, &at); err != nil {
			return nil, err
		}
		r.ComputedAt = time.Unix(at, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) COFinalScores(ctx context.Context, outcomeIDs []string) (map[string]*float64, error) {
	out := make(map[string]*float64, len(outcomeIDs))
	for _, id := range outcomeIDs {
		var final sql.NullFloat64
		err := s.db.QueryRowContext(ctx,
			`SELECT final_score FROM co_attainment WHERE outcome_id=$1`, id).Scan(&final)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			out[id] = nil
		case err != nil:
			return nil, err
		case final.Valid:
			v := final.Float64
			out[id] = &v
		default:
			out[id] = nil
		}
	}
	return out, nil
}

func (s *SQLStore) UpsertPOAttainment(ctx context.Context, row POAttainmentRow) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO po_attainment
		(program_outcome_id,direct_score,indirect_score,final_score,level,contributing,computed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (program_outcome_id) DO UPDATE SET
		 direct_score=EXCLUDED.direct_score, indirect_score=EXCLUDED.indirect_score,
		 final_score=EXCLUDED.final_score, level=EXCLUDED.level,
		 contributing=EXCLUDED.contributing, computed_at=EXCLUDED.computed_at`,
		row.ProgramOutcomeID, row.DirectScore, row.IndirectScore,
		row.FinalScore, row.Level, row.Contributing, row.ComputedAt.Unix())
	return err
}

func (s *SQLStore) ListPOAttainment(ctx context.Context) ([]POAttainmentRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT program_outcome_id,direct_score,indirect_score,
		final_score,level,contributing,computed_at
		FROM po_attainment ORDER BY program_outcome_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []POAttainmentRow
	for rows.Next() {
		var r POAttainmentRow
		var at int64
		if err := rows.Scan(&r.ProgramOutcomeID, &r.DirectScore, &r.IndirectScore,
			&r.FinalScore, &r.Level, &r.Contributing, &at); err != nil {
			return nil, err
		}
		r.ComputedAt = time.Unix(at, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

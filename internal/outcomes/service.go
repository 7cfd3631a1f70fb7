package outcomes

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
)

// Service orchestrates recomputation: snapshot the configuration and the
// course once, run the pure engine, persist results. The CO phase always
// completes (and is persisted) before the PO phase reads final scores.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// RecomputeCOAttainment recomputes and persists attainment for every CO of
// the course. A failure on one CO is logged and carried on its result;
// the remaining COs still compute and persist.
func (s *Service) RecomputeCOAttainment(ctx context.Context, courseID string) ([]attainment.COResult, error) {
	cfg, err := s.store.EngineConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return s.recomputeCOs(ctx, courseID, cfg)
}

func (s *Service) recomputeCOs(ctx context.Context, courseID string, cfg attainment.Config) ([]attainment.COResult, error) {
	snap, err := s.store.CourseSnapshot(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course snapshot: %w", err)
	}
	results := attainment.ComputeCourse(snap, cfg)
	now := s.now()
	for _, res := range results {
		if res.Err != nil {
			log.Printf("attainment: course %s outcome %s: %v", courseID, res.Code, res.Err)
			continue
		}
		if err := s.store.UpsertCOAttainment(ctx, rowFromResult(courseID, res, now)); err != nil {
			return results, fmt.Errorf("upsert CO %s: %w", res.Code, err)
		}
	}
	return results, nil
}

// RecomputePOAttainment recomputes every PO touched by the course's COs.
// Each affected PO is fully recomputed over all of its mappings, across
// every contributing course, against the stored CO final scores. POs with
// no surviving contribution are left untouched.
func (s *Service) RecomputePOAttainment(ctx context.Context, courseID string) ([]attainment.POResult, error) {
	cfg, err := s.store.EngineConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return s.recomputePOs(ctx, courseID, cfg)
}

func (s *Service) recomputePOs(ctx context.Context, courseID string, cfg attainment.Config) ([]attainment.POResult, error) {
	cos, err := s.store.ListCourseOutcomes(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	coIDs := make([]string, 0, len(cos))
	for _, co := range cos {
		coIDs = append(coIDs, co.ID)
	}

	touched, err := s.store.MappingsForOutcomes(ctx, coIDs)
	if err != nil {
		return nil, fmt.Errorf("mappings for course: %w", err)
	}
	if len(touched) == 0 {
		return nil, nil // course maps to no POs; nothing to update
	}
	poSet := map[string]struct{}{}
	var poIDs []string
	for _, m := range touched {
		if _, ok := poSet[m.ProgramOutcomeID]; !ok {
			poSet[m.ProgramOutcomeID] = struct{}{}
			poIDs = append(poIDs, m.ProgramOutcomeID)
		}
	}

	// Widen to every mapping of the affected POs so a PO's stored result
	// always reflects all contributing courses, not just this one.
	links, err := s.store.MappingsForProgramOutcomes(ctx, poIDs)
	if err != nil {
		return nil, fmt.Errorf("mappings for POs: %w", err)
	}
	var allCOs []string
	seen := map[string]struct{}{}
	engineLinks := make([]attainment.COPOLink, 0, len(links))
	for _, m := range links {
		engineLinks = append(engineLinks, attainment.COPOLink{
			OutcomeID:        m.OutcomeID,
			ProgramOutcomeID: m.ProgramOutcomeID,
			Correlation:      m.Correlation,
		})
		if _, ok := seen[m.OutcomeID]; !ok {
			seen[m.OutcomeID] = struct{}{}
			allCOs = append(allCOs, m.OutcomeID)
		}
	}

	scores, err := s.store.COFinalScores(ctx, allCOs)
	if err != nil {
		return nil, fmt.Errorf("CO final scores: %w", err)
	}
	surveys, err := s.store.Surveys(ctx, SurveyScopePO)
	if err != nil {
		return nil, fmt.Errorf("PO surveys: %w", err)
	}

	results := attainment.ComputeProgramOutcomes(engineLinks, scores, surveys, cfg)
	now := s.now()
	for _, res := range results {
		row := POAttainmentRow{
			ProgramOutcomeID: res.ProgramOutcomeID,
			DirectScore:      res.DirectScore,
			IndirectScore:    res.IndirectScore,
			FinalScore:       res.FinalScore,
			Level:            int(res.Level),
			Contributing:     res.Contributing,
			ComputedAt:       now,
		}
		if err := s.store.UpsertPOAttainment(ctx, row); err != nil {
			return results, fmt.Errorf("upsert PO %s: %w", res.ProgramOutcomeID, err)
		}
	}
	return results, nil
}

// RecomputeCourse is the trigger used by the marks-confirmed and
// mapping-changed handlers: CO phase first, persisted, then the PO phase.
// Both phases share one configuration snapshot so a concurrent config edit
// cannot split thresholds between them.
func (s *Service) RecomputeCourse(ctx context.Context, courseID string) ([]attainment.COResult, []attainment.POResult, error) {
	cfg, err := s.store.EngineConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("engine config: %w", err)
	}
	coRes, err := s.recomputeCOs(ctx, courseID, cfg)
	if err != nil {
		return coRes, nil, err
	}
	poRes, err := s.recomputePOs(ctx, courseID, cfg)
	if err != nil {
		return coRes, poRes, err
	}
	return coRes, poRes, nil
}

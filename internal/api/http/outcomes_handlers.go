package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

// Reference-data CRUD. This layer is the write-path collaborator: it
// validates payloads before anything reaches the store or engine.

type courseReq struct {
	ID   string `json:"id"`
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

func PutCourseHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseReq
		if !decodeValid(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		c := outcomes.Course{ID: req.ID, Code: req.Code, Name: req.Name}
		if err := store.PutCourse(r.Context(), c); err != nil {
			http.Error(w, "save course: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, c)
	}
}

func ListCoursesHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := store.ListCourses(r.Context())
		if err != nil {
			http.Error(w, "list courses: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, cs)
	}
}

type programOutcomeReq struct {
	ID          string `json:"id"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
}

func PutProgramOutcomeHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programOutcomeReq
		if !decodeValid(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		po := outcomes.ProgramOutcome{ID: req.ID, Code: req.Code, Description: req.Description}
		if err := store.PutProgramOutcome(r.Context(), po); err != nil {
			http.Error(w, "save program outcome: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, po)
	}
}

func ListProgramOutcomesHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, err := store.ListProgramOutcomes(r.Context())
		if err != nil {
			http.Error(w, "list program outcomes: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, pos)
	}
}

type courseOutcomeReq struct {
	ID            string   `json:"id"`
	Code          string   `json:"code" validate:"required"`
	Description   string   `json:"description"`
	TargetPercent *float64 `json:"target_percent" validate:"omitempty,gt=0,lte=100"`
}

func PutCourseOutcomeHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if _, err := store.GetCourse(r.Context(), courseID); err != nil {
			courseErr(w, err)
			return
		}
		var req courseOutcomeReq
		if !decodeValid(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		co := outcomes.CourseOutcome{
			ID: req.ID, CourseID: courseID, Code: req.Code,
			Description: req.Description, TargetPercent: req.TargetPercent,
		}
		if err := store.PutCourseOutcome(r.Context(), co); err != nil {
			http.Error(w, "save outcome: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, co)
	}
}

func ListCourseOutcomesHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		cos, err := store.ListCourseOutcomes(r.Context(), courseID)
		if err != nil {
			http.Error(w, "list outcomes: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, cos)
	}
}

type assessmentReq struct {
	ID       string  `json:"id"`
	Category string  `json:"category" validate:"required,oneof=IA1 IA2 ENDSEM"`
	MaxMarks float64 `json:"max_marks" validate:"gte=0"`
}

func PutAssessmentHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if _, err := store.GetCourse(r.Context(), courseID); err != nil {
			courseErr(w, err)
			return
		}
		var req assessmentReq
		if !decodeValid(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		a := outcomes.Assessment{
			ID: req.ID, CourseID: courseID,
			Category: attainment.Category(req.Category), MaxMarks: req.MaxMarks,
		}
		if err := store.PutAssessment(r.Context(), a); err != nil {
			http.Error(w, "save assessment: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, a)
	}
}

func ListAssessmentsHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		as, err := store.ListAssessments(r.Context(), courseID)
		if err != nil {
			http.Error(w, "list assessments: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, as)
	}
}

type componentReq struct {
	ID        string  `json:"id"`
	OutcomeID string  `json:"outcome_id" validate:"required"`
	Label     string  `json:"label"`
	MaxMarks  float64 `json:"max_marks" validate:"gt=0"`
}

func PutComponentHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		if assessmentID == "" {
			http.Error(w, "assessmentID required", http.StatusBadRequest)
			return
		}
		var req componentReq
		if !decodeValid(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		c := outcomes.Component{
			ID: req.ID, AssessmentID: assessmentID,
			OutcomeID: req.OutcomeID, Label: req.Label, MaxMarks: req.MaxMarks,
		}
		if err := store.PutComponent(r.Context(), c); err != nil {
			http.Error(w, "save component: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, c)
	}
}

func ListComponentsHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		cs, err := store.ListComponents(r.Context(), assessmentID)
		if err != nil {
			http.Error(w, "list components: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, cs)
	}
}

type mappingReq struct {
	OutcomeID        string `json:"outcome_id" validate:"required"`
	ProgramOutcomeID string `json:"program_outcome_id" validate:"required"`
	Correlation      int    `json:"correlation" validate:"min=1,max=3"`
}

// PutMappingHandler writes one articulation cell and retriggers the
// course recompute, since mapping edits change PO attainment.
func PutMappingHandler(store outcomes.Store, svc *outcomes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		var req mappingReq
		if !decodeValid(w, r, &req) {
			return
		}
		m := outcomes.Mapping{
			OutcomeID:        req.OutcomeID,
			ProgramOutcomeID: req.ProgramOutcomeID,
			Correlation:      req.Correlation,
		}
		if err := store.PutMapping(r.Context(), m); err != nil {
			http.Error(w, "save mapping: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if _, _, err := svc.RecomputeCourse(r.Context(), courseID); err != nil {
			http.Error(w, "recompute: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, m)
	}
}

type surveyReq struct {
	Scope        string  `json:"scope" validate:"required,oneof=co po"`
	RefID        string  `json:"ref_id" validate:"required"`
	Responses    int     `json:"responses" validate:"gte=0"`
	AverageScore float64 `json:"average_score" validate:"gte=0,lte=3"`
}

func PutSurveyHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req surveyReq
		if !decodeValid(w, r, &req) {
			return
		}
		s := outcomes.SurveyAggregate{
			Scope: outcomes.SurveyScope(req.Scope), RefID: req.RefID,
			Responses: req.Responses, AverageScore: req.AverageScore,
		}
		if err := store.PutSurvey(r.Context(), s); err != nil {
			http.Error(w, "save survey: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, s)
	}
}

func courseErr(w http.ResponseWriter, err error) {
	if errors.Is(err, outcomes.ErrNotFound) {
		http.Error(w, "course not found", http.StatusNotFound)
		return
	}
	http.Error(w, "course: "+err.Error(), http.StatusInternalServerError)
}

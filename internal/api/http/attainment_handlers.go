package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

// RecomputeCourseHandler is the manual recalculation trigger.
func RecomputeCourseHandler(svc *outcomes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		if courseID == "" {
			http.Error(w, "courseID required", http.StatusBadRequest)
			return
		}
		coRes, poRes, err := svc.RecomputeCourse(r.Context(), courseID)
		if err != nil {
			http.Error(w, "recompute: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"co_computed": len(coRes),
			"po_computed": len(poRes),
		})
	}
}

type coAttainmentView struct {
	outcomes.COAttainmentRow
	Target   float64 `json:"target"`
	Achieved bool    `json:"achieved"`
}

// GetCOAttainmentHandler returns the stored CO rows. Null score fields
// mean "no data yet" and must stay distinct from zero in the UI.
func GetCOAttainmentHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		rows, err := store.ListCOAttainment(r.Context(), courseID)
		if err != nil {
			http.Error(w, "attainment: "+err.Error(), http.StatusInternalServerError)
			return
		}
		cfg, err := store.EngineConfig(r.Context())
		if err != nil {
			http.Error(w, "config: "+err.Error(), http.StatusInternalServerError)
			return
		}
		views := make([]coAttainmentView, 0, len(rows))
		for _, row := range rows {
			v := coAttainmentView{COAttainmentRow: row, Target: cfg.POTargetLevel}
			v.Achieved = row.FinalScore != nil && *row.FinalScore >= cfg.POTargetLevel
			views = append(views, v)
		}
		writeJSON(w, views)
	}
}

type poAttainmentView struct {
	outcomes.POAttainmentRow
	Target   float64 `json:"target"`
	Achieved bool    `json:"achieved"`
}

func GetPOAttainmentHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.ListPOAttainment(r.Context())
		if err != nil {
			http.Error(w, "attainment: "+err.Error(), http.StatusInternalServerError)
			return
		}
		cfg, err := store.EngineConfig(r.Context())
		if err != nil {
			http.Error(w, "config: "+err.Error(), http.StatusInternalServerError)
			return
		}
		views := make([]poAttainmentView, 0, len(rows))
		for _, row := range rows {
			views = append(views, poAttainmentView{
				POAttainmentRow: row,
				Target:          cfg.POTargetLevel,
				Achieved:        row.FinalScore >= cfg.POTargetLevel,
			})
		}
		writeJSON(w, views)
	}
}

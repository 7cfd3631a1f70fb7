package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

type markRowReq struct {
	RollNo      string  `json:"roll_no" validate:"required"`
	ComponentID string  `json:"component_id" validate:"required"`
	Marks       float64 `json:"marks" validate:"gte=0"`
}

type replaceMarksReq struct {
	Rows []markRowReq `json:"rows" validate:"required,dive"`
}

// ReplaceMarksHandler is the "marks confirmed" trigger: replace the
// assessment's rows wholesale (upload semantics), then recompute the
// course's CO attainment and the affected POs.
//
// Mark bounds are checked here against the component set; the engine
// assumes sanitized input.
func ReplaceMarksHandler(store outcomes.Store, svc *outcomes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		if courseID == "" || assessmentID == "" {
			http.Error(w, "courseID and assessmentID required", http.StatusBadRequest)
			return
		}
		var req replaceMarksReq
		if !decodeValid(w, r, &req) {
			return
		}

		comps, err := store.ListComponents(r.Context(), assessmentID)
		if err != nil {
			http.Error(w, "components: "+err.Error(), http.StatusInternalServerError)
			return
		}
		maxByID := make(map[string]float64, len(comps))
		for _, c := range comps {
			maxByID[c.ID] = c.MaxMarks
		}
		rows := make([]outcomes.MarkRow, 0, len(req.Rows))
		for i, row := range req.Rows {
			max, ok := maxByID[row.ComponentID]
			if !ok {
				http.Error(w, fmt.Sprintf("row %d: component %s not in assessment", i, row.ComponentID), http.StatusBadRequest)
				return
			}
			if row.Marks > max {
				http.Error(w, fmt.Sprintf("row %d: marks %.2f exceed component max %.2f", i, row.Marks, max), http.StatusBadRequest)
				return
			}
			rows = append(rows, outcomes.MarkRow{
				RollNo: row.RollNo, ComponentID: row.ComponentID, Marks: row.Marks,
			})
		}

		if err := store.ReplaceMarks(r.Context(), assessmentID, rows); err != nil {
			http.Error(w, "replace marks: "+err.Error(), http.StatusInternalServerError)
			return
		}
		coRes, poRes, err := svc.RecomputeCourse(r.Context(), courseID)
		if err != nil {
			http.Error(w, "recompute: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"rows":        len(rows),
			"co_computed": len(coRes),
			"po_computed": len(poRes),
		})
	}
}

package http

import (
	"math"
	"net/http"

	"github.com/outcome-metrics/attainment-service/internal/attainment"
	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

const weightSumEpsilon = 1e-6

type engineConfigReq struct {
	COTargetMarksPercent float64 `json:"co_target_marks_percent" validate:"gt=0,lte=100"`
	Level1Threshold      float64 `json:"level1_threshold" validate:"gte=0,lte=100"`
	Level2Threshold      float64 `json:"level2_threshold" validate:"gte=0,lte=100"`
	Level3Threshold      float64 `json:"level3_threshold" validate:"gte=0,lte=100"`
	IA1Weight            float64 `json:"ia1_weight" validate:"gte=0,lte=1"`
	IA2Weight            float64 `json:"ia2_weight" validate:"gte=0,lte=1"`
	EndSemWeight         float64 `json:"end_sem_weight" validate:"gte=0,lte=1"`
	DirectWeight         float64 `json:"direct_weight" validate:"gte=0,lte=1"`
	IndirectWeight       float64 `json:"indirect_weight" validate:"gte=0,lte=1"`
	POTargetLevel        float64 `json:"po_target_level" validate:"gte=0,lte=3"`
}

func GetEngineConfigHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.EngineConfig(r.Context())
		if err != nil {
			http.Error(w, "config: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, configView(cfg))
	}
}

// PutEngineConfigHandler owns the weight-sum invariants. The engine never
// re-checks them; bad weights must be rejected here.
func PutEngineConfigHandler(store outcomes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engineConfigReq
		if !decodeValid(w, r, &req) {
			return
		}
		if math.Abs(req.IA1Weight+req.IA2Weight+req.EndSemWeight-1.0) > weightSumEpsilon {
			http.Error(w, "assessment weights must sum to 1.0", http.StatusBadRequest)
			return
		}
		if math.Abs(req.DirectWeight+req.IndirectWeight-1.0) > weightSumEpsilon {
			http.Error(w, "direct and indirect weights must sum to 1.0", http.StatusBadRequest)
			return
		}
		if !(req.Level1Threshold < req.Level2Threshold && req.Level2Threshold < req.Level3Threshold) {
			http.Error(w, "level thresholds must be strictly increasing", http.StatusBadRequest)
			return
		}
		cfg := attainment.Config{
			COTargetMarksPercent: req.COTargetMarksPercent,
			Level1Threshold:      req.Level1Threshold,
			Level2Threshold:      req.Level2Threshold,
			Level3Threshold:      req.Level3Threshold,
			IA1Weight:            req.IA1Weight,
			IA2Weight:            req.IA2Weight,
			EndSemWeight:         req.EndSemWeight,
			DirectWeight:         req.DirectWeight,
			IndirectWeight:       req.IndirectWeight,
			POTargetLevel:        req.POTargetLevel,
		}
		if err := store.PutEngineConfig(r.Context(), cfg); err != nil {
			http.Error(w, "save config: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, configView(cfg))
	}
}

func configView(cfg attainment.Config) engineConfigReq {
	return engineConfigReq{
		COTargetMarksPercent: cfg.COTargetMarksPercent,
		Level1Threshold:      cfg.Level1Threshold,
		Level2Threshold:      cfg.Level2Threshold,
		Level3Threshold:      cfg.Level3Threshold,
		IA1Weight:            cfg.IA1Weight,
		IA2Weight:            cfg.IA2Weight,
		EndSemWeight:         cfg.EndSemWeight,
		DirectWeight:         cfg.DirectWeight,
		IndirectWeight:       cfg.IndirectWeight,
		POTargetLevel:        cfg.POTargetLevel,
	}
}

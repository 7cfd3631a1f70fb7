package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/outcome-metrics/attainment-service/internal/api/http"
	"github.com/outcome-metrics/attainment-service/internal/config"
	"github.com/outcome-metrics/attainment-service/internal/db"
	"github.com/outcome-metrics/attainment-service/internal/outcomes"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := outcomes.NewSQLStore(dbh, cfg.DBDriver)
	svc := outcomes.NewService(store, time.Now)

	// Seed the coefficient row so the first recompute has defaults.
	if _, err := store.EngineConfig(ctx); err != nil {
		log.Fatalf("engine config: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Reference data
	r.Post("/courses", api.PutCourseHandler(store))
	r.Get("/courses", api.ListCoursesHandler(store))
	r.Post("/programs/outcomes", api.PutProgramOutcomeHandler(store))
	r.Get("/programs/outcomes", api.ListProgramOutcomesHandler(store))

	r.Route("/courses/{courseID}", func(cr chi.Router) {
		cr.Post("/outcomes", api.PutCourseOutcomeHandler(store))
		cr.Get("/outcomes", api.ListCourseOutcomesHandler(store))
		cr.Post("/assessments", api.PutAssessmentHandler(store))
		cr.Get("/assessments", api.ListAssessmentsHandler(store))
		cr.Post("/mappings", api.PutMappingHandler(store, svc))

		// Marks confirmation + manual recompute triggers
		cr.Put("/assessments/{assessmentID}/marks", api.ReplaceMarksHandler(store, svc))
		cr.Post("/recompute", api.RecomputeCourseHandler(svc))

		cr.Get("/attainment", api.GetCOAttainmentHandler(store))
	})
	r.Route("/assessments/{assessmentID}", func(ar chi.Router) {
		ar.Post("/components", api.PutComponentHandler(store))
		ar.Get("/components", api.ListComponentsHandler(store))
	})

	r.Post("/surveys", api.PutSurveyHandler(store))
	r.Get("/programs/outcomes/attainment", api.GetPOAttainmentHandler(store))

	r.Get("/config", api.GetEngineConfigHandler(store))
	r.Put("/config", api.PutEngineConfigHandler(store))

	log.Printf("attainmentd listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

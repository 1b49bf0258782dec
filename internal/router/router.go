// Package router sets up all HTTP routes and middleware chains for the
// admin API. Destructive bulk endpoints get an extra rate-limit layer.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizpress/internal/handlers"
	"quizpress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable rate
// limiting (tests, dev).
func New(admin *handlers.Admin, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/admin", func(r chi.Router) {
		// Hierarchy CRUD
		r.Route("/features", func(r chi.Router) {
			r.Get("/", admin.FeaturesList)
			r.Post("/", admin.FeatureCreate)
			r.Get("/{id}", admin.FeatureGet)
			r.Put("/{id}", admin.FeatureUpdate)
			r.Delete("/{id}", admin.FeatureDelete)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.CategoriesList)
			r.Post("/", admin.CategoryCreate)
			r.Get("/{id}", admin.CategoryGet)
			r.Put("/{id}", admin.CategoryUpdate)
			r.Delete("/{id}", admin.CategoryDelete)
		})
		r.Route("/topics", func(r chi.Router) {
			r.Get("/", admin.TopicsList)
			r.Post("/", admin.TopicCreate)
			r.Get("/{id}", admin.TopicGet)
			r.Put("/{id}", admin.TopicUpdate)
			r.Delete("/{id}", admin.TopicDelete)
		})
		r.Route("/subtopics", func(r chi.Router) {
			r.Get("/", admin.SubtopicsList)
			r.Post("/", admin.SubtopicCreate)
			r.Get("/{id}", admin.SubtopicGet)
			r.Put("/{id}", admin.SubtopicUpdate)
			r.Delete("/{id}", admin.SubtopicDelete)
		})

		// Hierarchy tools
		r.Get("/hierarchy", admin.Hierarchy)
		r.Post("/hierarchy/refresh-counts", admin.RefreshCounts)
		r.Post("/hierarchy/repair", admin.Repair)

		// Export is read-only and unthrottled.
		r.Get("/export", admin.Export)

		// Import, undo, and bulk delete are expensive or destructive;
		// they carry the rate limit when one is configured.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/import", admin.Import)
			r.Post("/import/undo", admin.ImportUndo)
			r.Post("/bulk-delete", admin.BulkDelete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

package main

import (
	"net/http"

	"github.com/deckgen/deckgen-api/internal/api"
	apiMiddleware "github.com/deckgen/deckgen-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	documentHandler := api.NewDocumentHandler(app.documentService, app.config.Storage.MaxUploadBytes)
	jobHandler := api.NewJobHandler(app.documentService)
	resultHandler := api.NewResultHandler(app.resultService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", documentHandler.SubmitDocument)
		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Get("/results/{filename}", resultHandler.GetResult)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

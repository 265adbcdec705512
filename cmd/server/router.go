package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mhutton/relay-api/internal/api"
	"github.com/mhutton/relay-api/internal/api/middleware"
	"github.com/mhutton/relay-api/internal/pipeline"
)

// buildRouter assembles the HTTP surface: operational endpoints served by
// chi directly, and everything else routed through the request pipeline's
// dispatcher.
func (app *application) buildRouter() (http.Handler, error) {
	authHandler := api.NewAuthHandler(app.users, app.tokens, app.hasher)
	userHandler := api.NewUserHandler(app.users)

	registry := pipeline.NewRegistry()
	if err := api.RegisterRoutes(registry, authHandler, userHandler); err != nil {
		return nil, err
	}

	dispatcher, err := pipeline.NewDispatcher(registry, pipeline.Options{
		Verifier:   app.tokens,
		RateLimits: app.limits,
		Logger:     app.logger,
		Metrics:    app.metrics,
		TimeFunc:   app.now,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)

	// Operational endpoints sit outside the request-id and access-log
	// stack so liveness probes and scrapes do not pollute the log.
	r.Get("/healthz", app.handleHealthz)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	// Every API route is matched, guarded, and rendered by the pipeline.
	r.Handle("/*", middleware.Chain(dispatcher,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.CORS(app.config.Server.CORSAllowedOrigins),
	))

	return r, nil
}

func (app *application) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}

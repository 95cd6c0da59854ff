package ui

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// OpsApp serves health, metrics and profiling endpoints on a separate port
type OpsApp struct {
	router *chi.Mux
	port   string
	checks map[string]HealthCheck
}

// NewOpsApp creates the ops listener. checks are run by /healthz.
func NewOpsApp(port string, checks map[string]HealthCheck) *OpsApp {
	a := &OpsApp{
		router: chi.NewRouter(),
		port:   port,
		checks: checks,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *OpsApp) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures the ops routes
func (a *OpsApp) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Handle("/metrics", promhttp.Handler())
	a.router.Mount("/debug", middleware.Profiler())
}

// Handler exposes the router, mainly for tests
func (a *OpsApp) Handler() http.Handler {
	return a.router
}

func (a *OpsApp) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(a.checks))
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": http.StatusText(status),
		"checks": results,
	})
}

// Start serves until ctx is cancelled
func (a *OpsApp) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[Ops] health, metrics and pprof on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

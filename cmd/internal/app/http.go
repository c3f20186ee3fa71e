package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	authapi "wayfare/cmd/internal/auth/api"
)

func (a *App) buildHandler(auth *authapi.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.Handle("GET /metrics", a.metrics.Handler())

	auth.Register(mux)

	return WithRequestLogging(a.log, a.metrics.WithMetrics(mux))
}

// Handler exposes the fully wired HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports ready only when the backing store is reachable.
// With the in-memory store, or when the DB gate is disabled, readiness
// degrades to liveness.
func (a *App) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.cfg.ReadinessRequireDB && a.pingDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := a.pingDB(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"reason": "database unreachable",
			})
			return
		}
	}
	writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeStatus(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

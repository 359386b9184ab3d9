// Package dashboard serves the HTTP interface for browsing recorded runs,
// rendering episode charts, and watching live episodes over a websocket.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/monitoring"
	"github.com/openlaps/driftsim/internal/store"
	"github.com/openlaps/driftsim/internal/timeutil"
	"github.com/openlaps/driftsim/internal/version"
)

// WebServer handles the HTTP interface for the run browser and live view.
type WebServer struct {
	address string
	db      *store.Store
	envCfg  driving.Config
	clock   timeutil.Clock
	static  http.Handler
	server  *http.Server
}

// Config contains configuration options for the web server.
type Config struct {
	Address string
	Store   *store.Store
	EnvCfg  driving.Config
	Clock   timeutil.Clock // Defaults to the real clock
	Static  http.Handler   // Optional handler for the root UI
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(cfg Config) *WebServer {
	ws := &WebServer{
		address: cfg.Address,
		db:      cfg.Store,
		envCfg:  cfg.EnvCfg,
		clock:   cfg.Clock,
		static:  cfg.Static,
	}
	if ws.clock == nil {
		ws.clock = timeutil.RealClock{}
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Start begins the HTTP server in a goroutine and shuts it down when the
// context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		monitoring.Logf("starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/runs", ws.handleRuns)
	mux.HandleFunc("/api/episodes", ws.handleEpisodes)
	mux.HandleFunc("/api/summary", ws.handleSummary)
	mux.HandleFunc("/api/live", ws.handleLive)
	mux.HandleFunc("/charts/rewards", ws.handleRewardsChart)
	mux.HandleFunc("/charts/track", ws.handleTrackChart)

	if ws.static != nil {
		mux.Handle("/", ws.static)
	}
	return mux
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("encoding response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{
		"status":    "ok",
		"service":   "driftsim",
		"version":   version.String(),
		"timestamp": ws.clock.Now().UTC().Format(time.RFC3339),
	})
}

// handleRuns lists recent runs, newest first. Query params:
//   - limit (optional; default 50)
func (ws *WebServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	limit := parseLimit(r, 50)
	runs, err := ws.db.Runs(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "listing runs: "+err.Error())
		return
	}
	ws.writeJSON(w, map[string]any{"runs": runs})
}

// handleEpisodes lists the episodes of one run in sequence order. Query
// params:
//   - run_id (required)
//   - limit (optional; default 1000)
func (ws *WebServer) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "run_id is required")
		return
	}
	limit := parseLimit(r, 1000)
	episodes, err := ws.db.Episodes(runID, limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "listing episodes: "+err.Error())
		return
	}
	ws.writeJSON(w, map[string]any{"run_id": runID, "episodes": episodes})
}

// handleSummary returns per-run aggregates. Query params:
//   - run_id (required)
func (ws *WebServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "run_id is required")
		return
	}
	summary, err := ws.db.Summary(runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "computing summary: "+err.Error())
		return
	}
	ws.writeJSON(w, summary)
}

func parseLimit(r *http.Request, def int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 10000 {
			limit = v
		}
	}
	return limit
}

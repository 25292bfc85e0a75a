package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/refinestack/refinestack/internal/artifact"
	"github.com/refinestack/refinestack/internal/auth"
	"github.com/refinestack/refinestack/internal/metrics"
	"github.com/refinestack/refinestack/internal/pipeline"
	"github.com/refinestack/refinestack/internal/ratelimit"
	"github.com/refinestack/refinestack/pkg/types"
)

// Handler is the HTTP handler for the service endpoints. Every request is
// gated by the auth guard and the per-client rate limiter before any
// pipeline or artifact work happens.
type Handler struct {
	guard    *auth.Guard
	limiter  *ratelimit.Limiter
	orch     *pipeline.Orchestrator
	store    *artifact.Store
	registry *metrics.Registry
	notifier Notifier
	mux      *http.ServeMux
}

// New creates a Handler wired to its collaborators and registers all routes.
// notifier may be nil when no WebSocket hub is attached.
func New(
	guard *auth.Guard,
	limiter *ratelimit.Limiter,
	orch *pipeline.Orchestrator,
	store *artifact.Store,
	registry *metrics.Registry,
	notifier Notifier,
) http.Handler {
	h := &Handler{
		guard:    guard,
		limiter:  limiter,
		orch:     orch,
		store:    store,
		registry: registry,
		notifier: notifier,
		mux:      http.NewServeMux(),
	}

	h.mux.HandleFunc("/optimize", h.gated(h.optimize))
	h.mux.HandleFunc("/retrieve", h.gated(h.retrieve))
	h.mux.HandleFunc("/api/v1/health", h.health)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.registry.ObserveRequest(metricPath(r.URL.Path), strconv.Itoa(rec.status))
}

// gated wraps next with the auth and rate-limit checks, in that order.
// Either gate failing short-circuits the request.
func (h *Handler) gated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.guard.Authorize(r) {
			jsonErr(w, http.StatusForbidden, "forbidden: invalid api key")
			return
		}
		if !h.limiter.Admit(clientKey(r)) {
			h.registry.ObserveRateLimited()
			jsonErr(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next(w, r)
	}
}

// --- route handlers ---------------------------------------------------------

// optimize handles POST /optimize — run the full pipeline over a batch.
func (h *Handler) optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var batch []types.Review
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(batch) == 0 {
		jsonErr(w, http.StatusBadRequest, "no data provided")
		return
	}

	res, err := h.orch.Run(r.Context(), batch)
	if err != nil {
		h.registry.ObserveRun(false, 0)

		var se *pipeline.StageError
		if errors.As(err, &se) {
			slog.Error("optimize: pipeline run failed",
				"stage", se.Stage, "err", se.Err)
			jsonErr(w, http.StatusInternalServerError,
				"pipeline stage "+se.Stage+" failed")
			return
		}
		slog.Error("optimize: pipeline run failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "pipeline run failed")
		return
	}
	h.registry.ObserveRun(true, len(res.Records))

	if h.notifier != nil {
		h.notifier.NotifyRun(RunSummary{
			RecordsProcessed: len(res.Records),
			FinalOutputFile:  res.FinalPath,
			PersistedFile:    res.PersistedPath,
			CompletedAt:      time.Now().UTC().Format(time.RFC3339),
		})
	}

	jsonResp(w, http.StatusOK, OptimizeResponse{
		Message:          "full pipeline executed: clean, extract, refine, assets, persist",
		RecordsProcessed: len(res.Records),
		FinalOutputFile:  res.FinalPath,
		PersistedFile:    res.PersistedPath,
		LogFile:          res.LogPath,
		Results:          res.Records,
	})
}

// retrieve handles GET|POST /retrieve — return the latest persisted artifact.
func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var records []types.Record
	err := h.store.Read(artifact.SlotAssets, &records)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		jsonErr(w, http.StatusNotFound, "no processed data found, run /optimize first")
		return
	case errors.Is(err, artifact.ErrCorrupt):
		slog.Error("retrieve: stored artifact unreadable", "err", err)
		jsonErr(w, http.StatusInternalServerError, "error reading processed data")
		return
	case err != nil:
		slog.Error("retrieve: artifact read failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "error reading processed data")
		return
	}

	jsonResp(w, http.StatusOK, RetrieveResponse{
		Message: "data retrieved successfully",
		Records: len(records),
		Data:    records,
	})
}

// health handles GET /api/v1/health — liveness plus artifact presence.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{State: "ok"}
	var records []types.Record
	if err := h.store.Read(artifact.SlotAssets, &records); err == nil {
		resp.ArtifactPresent = true
		resp.Records = len(records)
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

// clientKey buckets rate-limit state by caller network address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// metricPath collapses unknown paths so metric label cardinality stays bounded.
func metricPath(path string) string {
	switch path {
	case "/optimize", "/retrieve", "/api/v1/health":
		return path
	default:
		return "other"
	}
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

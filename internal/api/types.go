package api

import "github.com/refinestack/refinestack/pkg/types"

// OptimizeResponse is the payload for a successful POST /optimize.
type OptimizeResponse struct {
	Message          string         `json:"message"`
	RecordsProcessed int            `json:"records_processed"`
	FinalOutputFile  string         `json:"final_output_file"`
	PersistedFile    string         `json:"persisted_file"`
	LogFile          string         `json:"log_file"`
	Results          []types.Record `json:"results"`
}

// RetrieveResponse is the payload for a successful GET|POST /retrieve.
type RetrieveResponse struct {
	Message string         `json:"message"`
	Records int            `json:"records"`
	Data    []types.Record `json:"data"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State           string `json:"state"`
	ArtifactPresent bool   `json:"artifact_present"`
	Records         int    `json:"records"`
}

// RunSummary describes one completed pipeline run; it is pushed to
// WebSocket subscribers after every successful /optimize request.
type RunSummary struct {
	RecordsProcessed int    `json:"records_processed"`
	FinalOutputFile  string `json:"final_output_file"`
	PersistedFile    string `json:"persisted_file"`
	CompletedAt      string `json:"completed_at"` // RFC3339
}

// Notifier receives run summaries for fan-out to subscribers.
type Notifier interface {
	NotifyRun(RunSummary)
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

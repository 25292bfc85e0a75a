// Package types defines the shared data types that flow through the
// refinement pipeline: the raw Review submitted by clients, the enriched
// Record produced by the stages, and the scoring engine's RefinementResult.
// These are the canonical in-memory representations, shared by the stage
// implementations, the orchestrator, and the HTTP API.
package types

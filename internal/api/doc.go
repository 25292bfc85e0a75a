// Package api is the HTTP façade for the refinement service.
//
// Endpoints:
//   - POST /optimize       — run the full pipeline over a review batch
//   - GET|POST /retrieve   — return the latest persisted artifact
//   - GET /api/v1/health   — liveness and artifact presence
//
// Each gated request moves through auth check → rate check → handler; a
// failing gate short-circuits with 403 or 429 before any pipeline work
// begins. /optimize additionally rejects an empty batch with 400. Retrieval
// maps a missing artifact to 404 and a corrupt one to 500; such failures
// are terminal for that request only.
package api

// Package ws implements the WebSocket hub for refinestack-server.
//
// Hub manages a set of connected clients and pushes a run summary to all of
// them after every successful pipeline run. Broadcasts are event driven: the
// API handler calls NotifyRun when /optimize completes.
//
// New() creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket; the most recent
// run summary (if any) is replayed immediately on connect.
//
// Message format sent to clients:
//
//	{
//	  "event": "run_complete",
//	  "data":  { "records_processed": 3, "final_output_file": "...", ... }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. WebSocket endpoint is mounted at /ws/runs by the server.
package ws

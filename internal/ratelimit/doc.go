// Package ratelimit implements per-client sliding-window admission control.
//
// Limiter.Admit(clientKey) prunes the client's window to the trailing
// interval and admits the request only if capacity remains; denied requests
// are not recorded. The window re-evaluates continuously rather than
// resetting at fixed boundaries, so a full burst is re-admitted once the
// whole window has elapsed.
//
// The limiter is an injectable instance owned by the HTTP handler, not
// process-wide state. Run starts a background loop that evicts clients whose
// windows have gone fully stale, bounding memory growth under key churn.
package ratelimit

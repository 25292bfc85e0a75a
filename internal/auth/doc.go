// Package auth provides API key authentication for the HTTP API.
//
// Guard.Authorize(r) validates the API key from the configured request
// header against a single shared secret, using a constant-time comparison.
// When mode != "apikey" or the key is unset, all requests pass through
// (useful for local development with auth disabled).
//
// Guard.Update allows the config watcher to rotate the expected key at
// runtime without restarting the server.
package auth

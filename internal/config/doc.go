// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort              — port for the HTTP API (default 8080)
//   - Auth.Mode             — "apikey" or "none"
//   - Auth.KeyEnv           — environment variable holding the expected API key
//   - Auth.Header           — HTTP header name (default "x-api-key")
//   - RateLimit.MaxRequests — admissions per client per window (default 5)
//   - RateLimit.Window      — sliding window length (default 60s)
//   - Artifacts.Dir         — directory for named artifact slots (default "data")
//   - Artifacts.BlobDir     — directory for blob copies (default <dir>/blob_storage)
//   - Artifacts.LogFile     — per-record run log path (default <dir>/pipeline.log)
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads on file changes via fsnotify so rate
// limits and credentials can be rotated without a restart.
package config

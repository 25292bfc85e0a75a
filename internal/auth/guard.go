package auth

import (
	"crypto/subtle"
	"net/http"
	"sync"
)

// Guard enforces API key authentication on incoming HTTP requests.
//
// Behaviour:
//   - If mode != "apikey" or the key is "", all requests are allowed
//     (pass-through, useful for local development with auth disabled).
//   - Otherwise the value of the configured header is compared against the
//     expected key in constant time.
//
// Guard is safe for concurrent use; Update swaps the credentials atomically
// so the config watcher can rotate the key without a restart.
type Guard struct {
	mu     sync.RWMutex
	mode   string
	header string
	key    string
}

// New creates a Guard. header should be the HTTP header name carrying the key.
func New(mode, header, key string) *Guard {
	return &Guard{mode: mode, header: header, key: key}
}

// Update replaces the guard's mode, header, and expected key.
func (g *Guard) Update(mode, header, key string) {
	g.mu.Lock()
	g.mode = mode
	g.header = header
	g.key = key
	g.mu.Unlock()
}

// Authorize reports whether the request carries a valid API key.
// A missing, empty, or incorrect key fails authorization.
func (g *Guard) Authorize(r *http.Request) bool {
	g.mu.RLock()
	mode, header, key := g.mode, g.header, g.key
	g.mu.RUnlock()

	// Non-apikey modes or unconfigured key → allow everything.
	if mode != "apikey" || key == "" {
		return true
	}

	supplied := r.Header.Get(header)
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) == 1
}

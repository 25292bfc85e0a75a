package ws

import (
	"runtime"
	"sync"
	"testing"

	"github.com/refinestack/refinestack/internal/api"
)

func TestHub_BroadcastRacesDisconnect_NoPanic(t *testing.T) {
	h := New()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.NotifyRun(api.RunSummary{RecordsProcessed: 1})
				}
			}
		}()
	}

	// Churn clients while broadcasts are in flight. A send channel closed
	// between the broadcast snapshot and the send must be skipped, never
	// panicked on. The tiny buffer keeps the full-buffer path hot too.
	for i := 0; i < 5000; i++ {
		c := &client{send: make(chan []byte, 1)}
		h.register(c)
		runtime.Gosched()
		h.unregister(c)
	}

	close(done)
	wg.Wait()
}

func TestClient_TrySendAfterClose(t *testing.T) {
	c := &client{send: make(chan []byte, 1)}
	c.close()
	if c.trySend([]byte("x")) {
		t.Error("trySend on closed client: got true, want false")
	}
	c.close() // second close must be a no-op
}

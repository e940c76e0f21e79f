package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout applies to every backend call unless a per-call override is
// supplied on the enrollment submission.
const DefaultTimeout = 60 * time.Second

var (
	baseClientOnce sync.Once
	baseClient     *http.Client
)

// sharedClient returns the lazily-initialized shared http client. Timeout
// overrides never touch this instance, they get an independent clone.
func sharedClient() *http.Client {
	baseClientOnce.Do(func() {
		baseClient = &http.Client{Timeout: DefaultTimeout}
	})
	return baseClient
}

// clientWithTimeout clones the shared client configuration with a different
// timeout. The shared transport is reused, the client struct is not mutated.
func clientWithTimeout(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return sharedClient()
	}
	shared := sharedClient()
	return &http.Client{
		Transport: shared.Transport,
		Timeout:   timeout,
	}
}

// inflightRegistry tracks cancellation handles of running requests so an
// abandoned capture session can abort its uploads before a new session races
// them.
type inflightRegistry struct {
	mu    sync.Mutex
	calls map[string]context.CancelFunc
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{calls: make(map[string]context.CancelFunc)}
}

// track derives a cancellable context for one request and registers it under
// a fresh id. The returned release func must be called when the request ends.
func (r *inflightRegistry) track(parent context.Context) (ctx context.Context, release func()) {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	r.mu.Lock()
	r.calls[id] = cancel
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.calls, id)
		r.mu.Unlock()
		cancel()
	}
}

// cancelAll aborts every registered request.
func (r *inflightRegistry) cancelAll() {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.calls))
	for id, cancel := range r.calls {
		cancels = append(cancels, cancel)
		delete(r.calls, id)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

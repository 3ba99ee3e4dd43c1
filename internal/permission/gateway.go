// Package permission gates call placement behind the platform's
// authorization surface, caching the verdict for the session.
package permission

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultTimeout bounds the platform check and request; no definitive answer
// within it counts as denial.
const DefaultTimeout = 3 * time.Second

// Authorizer is the platform authorization surface: Granted checks the
// current grant state, Request asks the user once.
type Authorizer interface {
	Granted(ctx context.Context) (bool, error)
	Request(ctx context.Context) (bool, error)
}

// Gateway wraps an Authorizer with session caching. The first
// EnsureCallPermission resolves the grant (checking, then requesting once if
// needed); the outcome, granted or denied, is cached for the rest of the
// session. The mutex is held across the whole resolve, so concurrent
// dispatches cannot prompt the user twice. EnsureCallPermission never panics
// and never blocks past the timeout.
type Gateway struct {
	auth    Authorizer
	timeout time.Duration

	mu       sync.Mutex
	resolved bool
	granted  bool
}

// NewGateway creates a Gateway. A zero timeout selects DefaultTimeout.
func NewGateway(auth Authorizer, timeout time.Duration) *Gateway {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{auth: auth, timeout: timeout}
}

// EnsureCallPermission reports whether call placement is authorized,
// requesting authorization on first use. Denial and every internal failure
// yield false.
func (g *Gateway) EnsureCallPermission(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolved {
		return g.granted
	}
	g.granted = g.resolve(ctx)
	g.resolved = true
	return g.granted
}

// resolve runs the platform check and, when not yet granted, the single
// authorization request. Caller holds the mutex.
func (g *Gateway) resolve(ctx context.Context) (granted bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("permission: authorizer panic: %v", r)
			granted = false
		}
	}()

	if g.auth == nil {
		return false
	}

	checkCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ok, err := g.auth.Granted(checkCtx)
	if err != nil {
		log.Printf("permission: check: %v", err)
		return false
	}
	if ok {
		return true
	}

	ok, err = g.auth.Request(checkCtx)
	if err != nil {
		log.Printf("permission: request: %v", err)
		return false
	}
	return ok
}

// Static is an Authorizer with a fixed verdict, for platforms that have no
// call-permission gate (always granted) and for tests.
type Static bool

// Granted returns the fixed verdict.
func (s Static) Granted(ctx context.Context) (bool, error) { return bool(s), nil }

// Request returns the fixed verdict.
func (s Static) Request(ctx context.Context) (bool, error) { return bool(s), nil }

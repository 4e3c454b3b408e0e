// Package gatepool keeps at most one live gate session per host so a
// fan-out across many tasks against the same host reuses its gate
// instead of re-dialing and re-spawning for every dispatch (spec.md
// §4.7).
package gatepool

import (
	"sync"

	"github.com/benthomasson/ftl-go/internal/wire"
)

// GateSession is the request/reply surface a pooled gate process
// exposes. transport.GateSession satisfies this structurally; gatepool
// depends only on the shape, not on the transport package, so it can
// be exercised with a fake in tests.
type GateSession interface {
	Dispatch(tag string, body any) (wire.Frame, error)
	Close() error
}

// Handle is one pooled gate: the live session and the artifact hash
// it was built from, so a caller can tell whether a reused handle
// still matches the gate a task needs.
type Handle struct {
	Session      GateSession
	ArtifactHash string
}

// Pool maps host name to its one live Handle. Unlike a multi-tenant
// pool keyed by an arbitrary pool key, there is exactly one slot per
// host: nothing here needs sharing across independent callers within
// a single driver invocation.
type Pool struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{handles: make(map[string]*Handle)}
}

// Acquire returns host's pooled handle and removes it from the pool,
// or nil if no handle is pooled for host. The caller owns the handle
// until it calls Release or discards it.
func (p *Pool) Acquire(host string) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.handles[host]
	if !ok {
		return nil
	}
	delete(p.handles, host)
	return h
}

// Release returns handle to the pool under host, replacing whatever
// was there (there should be nothing, since Acquire removes it).
func (p *Pool) Release(host string, handle *Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handles[host] = handle
}

// EvictOne removes and shuts down one arbitrary pooled handle,
// reporting whether there was one to evict. Used when the pool needs
// to make room or when a dispatch against a pooled handle failed and
// the caller wants a fresh connection on retry.
func (p *Pool) EvictOne() bool {
	p.mu.Lock()
	var host string
	var handle *Handle
	for h, v := range p.handles {
		host, handle = h, v
		break
	}
	if handle != nil {
		delete(p.handles, host)
	}
	p.mu.Unlock()

	if handle == nil {
		return false
	}
	_ = handle.Session.Close()
	return true
}

// Evict removes and shuts down host's handle, if any.
func (p *Pool) Evict(host string) {
	p.mu.Lock()
	handle, ok := p.handles[host]
	if ok {
		delete(p.handles, host)
	}
	p.mu.Unlock()
	if ok {
		_ = handle.Session.Close()
	}
}

// Drain shuts down every pooled handle in an orderly fashion,
// emptying the pool.
func (p *Pool) Drain() {
	p.mu.Lock()
	handles := p.handles
	p.handles = make(map[string]*Handle)
	p.mu.Unlock()

	for _, handle := range handles {
		_ = handle.Session.Close()
	}
}

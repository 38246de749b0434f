package notify

import "sync"

// Conn is a live client connection able to receive JSON frames. The
// websocket connection satisfies it; tests use an in-memory fake.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Registry maps an authenticated identity to its live connection. It is a
// per-process registry behind an interface-shaped surface so it could be
// swapped for a distributed pub/sub backend without touching callers.
//
// Registration is last-writer-wins: a second connection for the same email
// replaces the first, which is closed.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Register(email string, c Conn) {
	r.mu.Lock()
	prev := r.conns[email]
	r.conns[email] = c
	r.mu.Unlock()
	if prev != nil && prev != c {
		prev.Close()
	}
}

// Unregister removes the mapping only if it still points at c, so a stale
// disconnect cannot evict a newer registration.
func (r *Registry) Unregister(email string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[email] == c {
		delete(r.conns, email)
	}
}

func (r *Registry) Lookup(email string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[email]
	return c, ok
}

package hub

import "sync"

// Registry tracks every live connection and hands out fan-out targets. User
// bindings live on the clients themselves; the registry only enforces that
// operations on unknown connection ids are no-ops.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Add registers a freshly upgraded connection with no user binding and no
// room memberships.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove drops the connection and returns it, or nil when the id is unknown
// or was already removed.
func (r *Registry) Remove(connID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return nil
	}
	delete(r.clients, connID)
	return c
}

// Get returns the live connection, or nil when the id is unknown.
func (r *Registry) Get(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[connID]
}

// Bind applies the one-way user binding for a connection. The second return
// reports whether the binding was applied now; it is false for unknown
// connections and for already-bound ones.
func (r *Registry) Bind(connID, userID string) (*Client, bool) {
	r.mu.RLock()
	c := r.clients[connID]
	r.mu.RUnlock()

	if c == nil {
		return nil, false
	}
	return c, c.bindUser(userID)
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

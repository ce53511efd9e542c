package owner

import "sync"

// ClientID identifies a bus peer. It is the unique bus sender address of
// the connection and is valid only while that connection exists.
type ClientID string

// ModemClient is the pseudo-identity used for claims sourced from the
// modem/telephony collaborator. It never disconnects.
const ModemClient ClientID = ":mce.modem"

// EvictFunc removes all state a domain holds for the given client.
type EvictFunc func(client ClientID)

// Registry is the disconnect fan-out point shared by all domains.
type Registry struct {
	mu     sync.Mutex
	evicts []EvictFunc
	live   map[ClientID]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		live: make(map[ClientID]struct{}),
	}
}

// OnEvict registers a domain eviction callback. Callbacks run in
// registration order during Drop.
func (r *Registry) OnEvict(fn EvictFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicts = append(r.evicts, fn)
}

// Track marks a client as live. Idempotent.
func (r *Registry) Track(client ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[client] = struct{}{}
}

// IsLive reports whether the client is currently tracked.
func (r *Registry) IsLive(client ClientID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[client]
	return ok
}

// Drop evicts the client from every registered domain and forgets it.
// All eviction callbacks complete before Drop returns, so the identity
// may be reused by the bus layer afterwards. Dropping an unknown client
// still runs the callbacks; eviction is idempotent in every domain.
func (r *Registry) Drop(client ClientID) {
	r.mu.Lock()
	delete(r.live, client)
	evicts := make([]EvictFunc, len(r.evicts))
	copy(evicts, r.evicts)
	r.mu.Unlock()

	// Callbacks run outside the lock; domains may call back into the
	// registry (e.g. IsLive) while evicting.
	for _, fn := range evicts {
		fn(client)
	}
}

// LiveCount returns the number of tracked clients.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

package activity

import (
	"errors"
	"sync"

	"github.com/modecontrol/mced/pkg/owner"
)

// DefaultCapacity bounds the callback registry.
const DefaultCapacity = 16

// ErrRegistryFull rejects registrations beyond capacity.
var ErrRegistryFull = errors.New("activity: callback registry full")

// Callback is one registered activity callback: the D-Bus method the
// owner wants called on the next user activity.
type Callback struct {
	Owner     owner.ClientID
	Service   string
	Path      string
	Interface string
	Method    string
}

// Registry is the bounded one-shot callback store.
type Registry struct {
	mu        sync.Mutex
	capacity  int
	callbacks []Callback
}

// NewRegistry creates a registry; zero or negative capacity selects
// DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{capacity: capacity}
}

// Register stores a callback, rejecting with ErrRegistryFull at
// capacity.
func (r *Registry) Register(cb Callback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.callbacks) >= r.capacity {
		return ErrRegistryFull
	}
	r.callbacks = append(r.callbacks, cb)
	return nil
}

// UnregisterAll removes every callback owned by the client. Used for the
// remove request and for disconnect eviction.
func (r *Registry) UnregisterAll(client owner.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.callbacks[:0]
	for _, cb := range r.callbacks {
		if cb.Owner != client {
			kept = append(kept, cb)
		}
	}
	r.callbacks = kept
}

// Drain empties the registry and returns every stored callback for
// invocation. One activity event drains everything; the order of the
// returned slice carries no meaning.
func (r *Registry) Drain() []Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := r.callbacks
	r.callbacks = nil
	return drained
}

// Len returns the number of stored callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}

package lease

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/owner"
)

// Table errors.
var (
	// ErrExpiryRequired is returned by Put on an expiring table when the
	// expiry is the zero time.
	ErrExpiryRequired = errors.New("lease: expiry required")

	// ErrExpiryForbidden is returned by Put on a non-expiring table when
	// an expiry is supplied.
	ErrExpiryForbidden = errors.New("lease: table is non-expiring")
)

// Entry is one claim held in a Table.
type Entry[V any] struct {
	// Owner is the client the claim belongs to.
	Owner owner.ClientID

	// Key distinguishes multiple claims by the same owner.
	Key string

	// Value is the claimed value.
	Value V

	// Expiry is when the claim lapses. Zero on non-expiring tables.
	Expiry time.Time

	seq uint64
}

type entryKey struct {
	owner owner.ClientID
	key   string
}

// Table stores at most one claim per (owner, key).
type Table[V any] struct {
	mu          sync.Mutex
	entries     map[entryKey]*Entry[V]
	nonExpiring bool
	seq         uint64
}

// New creates an expiring table: every Put must carry an expiry.
func New[V any]() *Table[V] {
	return &Table[V]{
		entries: make(map[entryKey]*Entry[V]),
	}
}

// NewNonExpiring creates a table whose entries live until Remove or
// EvictOwner. Put must carry the zero expiry.
func NewNonExpiring[V any]() *Table[V] {
	return &Table[V]{
		entries:     make(map[entryKey]*Entry[V]),
		nonExpiring: true,
	}
}

// Put inserts or replaces the claim keyed by (client, key). Replacing an
// entry refreshes its acceptance sequence, so the latest Put wins any
// timestamp tie.
func (t *Table[V]) Put(client owner.ClientID, key string, value V, expiry time.Time) error {
	if t.nonExpiring {
		if !expiry.IsZero() {
			return ErrExpiryForbidden
		}
	} else if expiry.IsZero() {
		return ErrExpiryRequired
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.entries[entryKey{client, key}] = &Entry[V]{
		Owner:  client,
		Key:    key,
		Value:  value,
		Expiry: expiry,
		seq:    t.seq,
	}
	return nil
}

// Remove deletes one claim. Reports whether a claim existed.
func (t *Table[V]) Remove(client owner.ClientID, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := entryKey{client, key}
	if _, ok := t.entries[k]; !ok {
		return false
	}
	delete(t.entries, k)
	return true
}

// Get returns the claim value for (client, key).
func (t *Table[V]) Get(client owner.ClientID, key string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[entryKey{client, key}]; ok {
		return e.Value, true
	}
	var zero V
	return zero, false
}

// EvictOwner deletes every claim held by the client and returns the
// removed entries in acceptance order. Callers re-reduce when the result
// is non-empty.
func (t *Table[V]) EvictOwner(client owner.ClientID) []Entry[V] {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []Entry[V]
	for k, e := range t.entries {
		if k.owner == client {
			removed = append(removed, *e)
			delete(t.entries, k)
		}
	}
	sortBySeq(removed)
	return removed
}

// Sweep deletes every claim whose expiry is at or before now and returns
// the removed entries in acceptance order. On non-expiring tables Sweep
// is a no-op.
func (t *Table[V]) Sweep(now time.Time) []Entry[V] {
	if t.nonExpiring {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []Entry[V]
	for k, e := range t.entries {
		if !e.Expiry.After(now) {
			removed = append(removed, *e)
			delete(t.entries, k)
		}
	}
	sortBySeq(removed)
	return removed
}

// Entries returns all claims in acceptance order. The slice is a copy;
// reductions may iterate it without holding the table lock.
func (t *Table[V]) Entries() []Entry[V] {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := make([]Entry[V], 0, len(t.entries))
	for _, e := range t.entries {
		all = append(all, *e)
	}
	sortBySeq(all)
	return all
}

// Len returns the number of live claims.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func sortBySeq[V any](entries []Entry[V]) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
}

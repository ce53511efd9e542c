// Package lease implements the per-domain claim store underlying the
// arbitration domains: one entry per (owner, key), an optional expiry,
// and bulk eviction by owner.
//
// Each domain holds its own Table; tables are never shared. Operations
// are serialized by the table mutex, so concurrent Put/Remove/Sweep for
// the same key observe a consistent before/after state. Entries carry a
// monotonically increasing acceptance sequence, which makes Entries()
// deterministic and gives last-writer-wins semantics when expiry
// timestamps tie.
//
// Tables are expiring by default: Put rejects a zero expiry. Domains
// whose claims live until cancel or disconnect (call claims, LED
// requests) use NewNonExpiring, which forbids expiries instead.
package lease

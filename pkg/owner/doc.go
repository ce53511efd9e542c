// Package owner tracks the liveness of bus clients and fans a single
// disconnect event out to every domain holding per-client state.
//
// Each arbitration domain registers an eviction callback once at startup.
// When the bus layer reports that a client vanished, Drop runs every
// callback, in registration order, before returning. The bus layer must
// not reuse an identity until Drop has returned, which keeps the
// "no entry outlives its owner" invariant without any per-domain
// disconnect handling.
package owner

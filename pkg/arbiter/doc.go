// Package arbiter composes the arbitration domains into the single
// authority behind the mode control entity's bus surface.
//
// Request entry points mirror the wire methods one to one. An inbound
// request mutates exactly one domain; the owning domain re-reduces and,
// when the reduced value actually moved, the arbiter emits the domain's
// signal into the sink before the request returns, so a requester's
// reply never precedes its own signal. Signal emission is serialized,
// which keeps each domain's signals in the order their transitions were
// applied.
//
// Collaborator inputs (modem call claims, offline-mode flips, display
// state, alarm UI, user activity) enter through dedicated methods and
// flow through the same reductions as client requests. Disconnects
// arrive via ClientDropped and fan out through the owner registry to
// every domain before the identity is retired.
package arbiter

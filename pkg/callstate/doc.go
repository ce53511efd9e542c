// Package callstate reduces the call-state claims of all live clients to
// the single authoritative (state, type) pair of the device.
//
// Every client owns at most one claim. The reduction is fixed: the
// aggregate state is the highest-priority claimed state under
// ringing > active > service > none, and the aggregate type is emergency
// iff any live claim, whatever its state, declares emergency. Claims from
// the modem collaborator enter through the same path as D-Bus claims,
// under the owner.ModemClient pseudo-identity; neither source outranks
// the other.
//
// Claiming (none, normal) clears the caller's claim, which is also what
// disconnect eviction does.
package callstate

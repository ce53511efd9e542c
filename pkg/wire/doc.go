// Package wire defines the fixed D-Bus vocabulary of the Mode Control
// Entity: service, interface and path names, request and signal member
// names, and the enumerated mode values exchanged on the bus.
//
// The string and bit constants are part of the published wire contract and
// must never change. Typed enums (CallState, CallType, BlankingPolicy,
// DisplayState) wrap the wire strings so the arbitration core can work
// with closed domains; Parse helpers reject anything outside the domain.
package wire

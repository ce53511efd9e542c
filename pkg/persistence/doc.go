// Package persistence handles the JSON serialization of the small
// runtime state that survives daemon restarts: the radio state bitmask
// and the LED enable toggle. Everything else the daemon tracks is bound
// to live bus connections and is deliberately not persisted.
package persistence

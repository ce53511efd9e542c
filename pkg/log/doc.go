// Package log captures arbitration events: requests, emitted signals,
// owner evictions and lease sweeps.
//
// Domain packages never log; the arbiter records events through the
// Logger interface, so logging can be disabled (NoopLogger), written to
// a compact CBOR file (FileLogger), mirrored to the daemon console
// (ZerologAdapter), or any combination (MultiLogger). CBOR encoding
// uses integer keys for compactness; Reader decodes a recorded stream
// back into events.
package log

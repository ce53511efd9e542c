// Package activity tracks user activity: the system inactivity state and
// the one-shot callbacks clients register against the next activity
// event.
//
// The registry is bounded; registrations beyond capacity are rejected,
// never queued. A single activity event drains the whole registry - each
// stored callback is handed out exactly once and forgotten. The
// inactivity tracker flips to inactive after a fixed quiet period and
// back to active on the first activity event, announcing each flip.
package activity

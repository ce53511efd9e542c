// Package notification tracks the named windows during which the
// display is forced on, e.g. while an incoming-message banner shows.
//
// Windows are keyed by (owner, name); the same owner may hold several
// concurrently open windows under distinct names. User activity pushes
// an open window's deadline forward by its extend step, but cumulative
// extension is capped at one un-extended duration beyond the last
// explicit begin, so activity alone can never hold the display on
// indefinitely. An explicit end keeps the window forcing for its linger
// tail; re-beginning the same key during the tail cancels the closure.
// Expiry without renewal closes the window with no tail.
package notification

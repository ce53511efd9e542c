// Package ledpattern arbitrates LED pattern requests from many clients
// into the single pattern the LED collaborator should show.
//
// A pattern is "activated" while at least one client requests it;
// activate and deactivate are idempotent set-membership toggles, so two
// clients requesting the same pattern keep it activated until both have
// released it. Pattern definitions (priority, privileged flag) come from
// configuration. Unknown pattern names are tracked so deactivation stays
// symmetric, but they never reach the evaluation and never signal.
//
// The evaluated pattern is the highest-priority activated pattern that
// is privileged or admitted by the global enable toggle. Flipping the
// toggle re-evaluates but does not change any pattern's activation, so
// per-pattern transition signals fire only on genuine activate and
// deactivate edges.
package ledpattern

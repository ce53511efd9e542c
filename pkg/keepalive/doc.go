// Package keepalive tracks the renewable CPU keepalive leases that hold
// the late-suspend gate closed.
//
// A lease is keyed by (owner, context); starting an existing key renews
// it. The advertised period is policy-fixed and purely informational:
// clients are expected to renew comfortably inside it. The gate is
// closed while any lease is live and opens when the last lease stops,
// is evicted, or expires in a sweep.
//
// The wakeup request is separate accounting reserved for one designated
// collaborator: each accepted wakeup deposits a credit that suppresses
// exactly one suspend attempt, regardless of lease state.
package keepalive

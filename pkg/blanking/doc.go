// Package blanking arbitrates the two independent display-blanking
// domains: prevention leases and the policy stack.
//
// Prevention is a set of time-bounded client leases that suspend
// automatic display blanking. The lease duration is fixed by policy
// (60 seconds); clients renew by repeating the pause request. The
// active/inactive status changes only on the empty/non-empty transitions
// of the lease set.
//
// The policy stack reduces the currently active override reasons to one
// visible policy under call > alarm > notification. When the last reason
// clears, the stack holds a linger value for a fixed window before
// relaxing to default, so overlapping reasons that clear within
// milliseconds of each other do not flap the policy.
package blanking

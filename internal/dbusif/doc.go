// Package dbusif is the D-Bus frontend of the mode control daemon. It
// claims the com.nokia.mce well-known name, exports the request
// interface at /com/nokia/mce/request, and broadcasts arbitration
// signals from /com/nokia/mce/signal.
//
// The frontend owns everything bus-specific: sender identities map to
// arbiter client IDs, a NameOwnerChanged watch turns bus disconnects
// into arbiter evictions, and stored activity callbacks are delivered
// as outbound method calls. The arbiter itself never sees a bus type.
package dbusif

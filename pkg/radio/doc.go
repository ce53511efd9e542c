// Package radio owns the process-wide radio state bitmask.
//
// Change applies the read-modify-write the wire contract prescribes:
// new = (old &^ mask) | (value & mask). Bits outside the defined radio
// set are ignored. The master bit is mirrored both ways with the
// network offline-mode collaborator: a local master change propagates
// outward through the master callback, while SetMasterFromCollaborator
// applies an inbound change exactly like a local request, minus the
// outward echo.
package radio

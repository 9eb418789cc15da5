// Package sbdyn models spinning appendages attached to a rigid spacecraft hub and propagates the
// coupled vehicle with the back-substitution method.
package sbdyn

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

var (
	// ErrStateExists is returned when registering a state name twice in the same manager.
	ErrStateExists = errors.New("state already registered")
	// ErrStateNotFound is returned when a state or property reference does not exist.
	ErrStateNotFound = errors.New("state or property not found")
	// ErrOutOfOrder is returned when an effector operation is called in the wrong phase of a step.
	ErrOutOfOrder = errors.New("operation called out of order")
	// ErrNotRegistered is returned when an effector is used before its states were registered.
	ErrNotRegistered = errors.New("effector states not registered")
	// ErrNotLinked is returned when an effector is used before being linked to the hub states.
	ErrNotLinked = errors.New("effector not linked to hub states")
	// ErrDegenerateInertia is returned when the inertia about the hinge axis is not strictly positive.
	ErrDegenerateInertia = errors.New("degenerate inertia about hinge axis")
)

// SBLogger returns the default logfmt logger for the named object.
func SBLogger(name string) kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(klog, "object", name)
}

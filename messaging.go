package sbdyn

// MotorTorqueMsg is the commanded motor torque of a hinge, in N.m.
type MotorTorqueMsg struct {
	MotorTorque float64
}

// HingedRigidBodyMsg is the hinge telemetry.
type HingedRigidBodyMsg struct {
	Theta, ThetaDot float64 // rad and rad/s
}

// SCStatesMsg is the inertial state of a body, logged as if it were a rigid spacecraft.
type SCStatesMsg struct {
	Position []float64 // inertial position
	Velocity []float64 // inertial velocity
	Sigma    []float64 // inertial attitude (MRP)
	Omega    []float64 // inertial angular velocity in body frame components
}

// Message is a single payload slot exchanged between modules. Writers overwrite the payload,
// readers see the last written one. A nil *Message is unlinked.
type Message[T any] struct {
	payload T
	written bool
	writes  uint64
}

// NewMessage returns a linked and unwritten message.
func NewMessage[T any]() *Message[T] {
	return &Message[T]{}
}

// IsLinked returns whether this message exists.
func (m *Message[T]) IsLinked() bool {
	return m != nil
}

// IsWritten returns whether this message was written at least once.
func (m *Message[T]) IsWritten() bool {
	return m != nil && m.written
}

// Write stores the payload. Writing to an unlinked message does nothing.
func (m *Message[T]) Write(p T) {
	if m == nil {
		return
	}
	m.payload = p
	m.written = true
	m.writes++
}

// Read returns the last written payload, or the zero payload.
func (m *Message[T]) Read() T {
	if m == nil {
		var zero T
		return zero
	}
	return m.payload
}

// Writes returns how many times this message was written.
func (m *Message[T]) Writes() uint64 {
	if m == nil {
		return 0
	}
	return m.writes
}

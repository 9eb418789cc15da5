package sbdyn

import "fmt"

// TorqueCommander defines a motor torque commander of a hinge.
type TorqueCommander interface {
	// Command returns the motor torque in N.m given the time and the latest hinge telemetry.
	Command(t float64, hinge HingedRigidBodyMsg) float64
	// Output returns the message the command is written to.
	Output() *Message[MotorTorqueMsg]
}

/* Available commanders */

// ConstantTorque always commands the same torque.
type ConstantTorque struct {
	Torque float64
	out    *Message[MotorTorqueMsg]
}

// NewConstantTorque returns a constant torque commander writing to a new message.
func NewConstantTorque(torque float64) *ConstantTorque {
	return &ConstantTorque{torque, NewMessage[MotorTorqueMsg]()}
}

// Command implements the TorqueCommander interface.
func (c *ConstantTorque) Command(t float64, hinge HingedRigidBodyMsg) float64 {
	return c.Torque
}

// Output implements the TorqueCommander interface.
func (c *ConstantTorque) Output() *Message[MotorTorqueMsg] {
	return c.out
}

// HingePD is a proportional derivative controller of the hinge angle with a torque saturation.
type HingePD struct {
	ThetaRef    float64 // rad
	ThetaDotRef float64 // rad/s
	Kp, Kd      float64
	MaxTorque   float64 // N.m, no saturation if zero
	out         *Message[MotorTorqueMsg]
}

// NewHingePD returns a hinge PD controller writing to a new message.
func NewHingePD(thetaRef, kp, kd, maxTorque float64) *HingePD {
	if kp < 0 || kd < 0 || maxTorque < 0 {
		panic(fmt.Errorf("gains and saturation must be positive: kp=%f kd=%f max=%f", kp, kd, maxTorque))
	}
	return &HingePD{ThetaRef: thetaRef, Kp: kp, Kd: kd, MaxTorque: maxTorque, out: NewMessage[MotorTorqueMsg]()}
}

// Command implements the TorqueCommander interface.
func (c *HingePD) Command(t float64, hinge HingedRigidBodyMsg) float64 {
	u := -c.Kp*(hinge.Theta-c.ThetaRef) - c.Kd*(hinge.ThetaDot-c.ThetaDotRef)
	if c.MaxTorque > 0 {
		if u > c.MaxTorque {
			u = c.MaxTorque
		} else if u < -c.MaxTorque {
			u = -c.MaxTorque
		}
	}
	return u
}

// Output implements the TorqueCommander interface.
func (c *HingePD) Output() *Message[MotorTorqueMsg] {
	return c.out
}

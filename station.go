package sbdyn

import (
	"fmt"
	"math/rand"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// HingeMeasurement is a noisy hinge reading.
type HingeMeasurement struct {
	T               float64
	Theta, ThetaDot float64
}

func (m HingeMeasurement) String() string {
	return fmt.Sprintf("t=%f θ=%f θ̇=%f", m.T, m.Theta, m.ThetaDot)
}

// HingeEncoder reads the hinge telemetry and adds Gaussian noise to it.
type HingeEncoder struct {
	Input *Message[HingedRigidBodyMsg]
	noise *distmv.Normal // θ, θ̇ noise
	last  HingeMeasurement
	count uint64
}

// NewHingeEncoder returns a new encoder of the provided telemetry with the provided variances,
// in rad^2 and (rad/s)^2. The noise is seeded for reproducible runs.
func NewHingeEncoder(input *Message[HingedRigidBodyMsg], σθ, σθDot float64, seed int64) *HingeEncoder {
	noise, ok := distmv.NewNormal([]float64{0, 0}, mat64.NewSymDense(2, []float64{σθ, 0, 0, σθDot}), rand.New(rand.NewSource(seed)))
	if !ok {
		panic("hinge encoder noise covariance is not positive definite")
	}
	return &HingeEncoder{Input: input, noise: noise}
}

// Measure reads the telemetry and returns a new noisy measurement. It returns false when the
// telemetry was never written.
func (e *HingeEncoder) Measure(t float64) (HingeMeasurement, bool) {
	if !e.Input.IsWritten() {
		return HingeMeasurement{}, false
	}
	hinge := e.Input.Read()
	n := e.noise.Rand(nil)
	e.last = HingeMeasurement{t, hinge.Theta + n[0], hinge.ThetaDot + n[1]}
	e.count++
	return e.last, true
}

// Last returns the last measurement and how many measurements were taken.
func (e *HingeEncoder) Last() (HingeMeasurement, uint64) {
	return e.last, e.count
}

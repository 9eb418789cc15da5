package sbdyn

import (
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// Hub is the rigid central body of a spacecraft. Its reference point B is where the position
// and velocity states are defined, and its center of mass is Bc.
type Hub struct {
	Mass      float64      // kg
	IHubPntBc *mat64.Dense // inertia about Bc in B frame components
	RBcB      []float64    // Bc relative to B, B frame components
	SigmaInit []float64    // [BN] as an MRP
	OmegaInit []float64    // ω_BN in B frame components
	RInit     []float64    // r_BN in N frame components
	VInit     []float64    // v_BN in N frame components

	sigma, omega, position, velocity *StateData
	massProps                        EffectorMassProps
}

// NewHub returns a hub at rest at the inertial origin.
func NewHub(mass float64, inertia *mat64.Dense) *Hub {
	return &Hub{
		Mass:      mass,
		IHubPntBc: inertia,
		RBcB:      []float64{0, 0, 0},
		SigmaInit: []float64{0, 0, 0},
		OmegaInit: []float64{0, 0, 0},
		RInit:     []float64{0, 0, 0},
		VInit:     []float64{0, 0, 0},
	}
}

// registerStates registers the hub states and the vehicle properties shared with the effectors.
func (h *Hub) registerStates(m *StateManager, prefix string) (err error) {
	if h.Mass <= 0 {
		return errors.Errorf("hub mass must be positive, got %f", h.Mass)
	}
	if h.position, err = m.RegisterState(prefix+"hubPosition", 3, h.RInit); err != nil {
		return err
	}
	if h.velocity, err = m.RegisterState(prefix+"hubVelocity", 3, h.VInit); err != nil {
		return err
	}
	if h.sigma, err = m.RegisterState(prefix+"hubSigma", 3, h.SigmaInit); err != nil {
		return err
	}
	if h.omega, err = m.RegisterState(prefix+"hubOmega", 3, h.OmegaInit); err != nil {
		return err
	}
	m.RegisterProperty(prefix+"centerOfMassSC", 3, 1)
	m.RegisterProperty(prefix+"centerOfMassPrimeSC", 3, 1)

	rTilde := tilde(vec3(h.RBcB))
	h.massProps = EffectorMassProps{
		Mass:       h.Mass,
		RCB:        vec3(h.RBcB),
		RPrimeCB:   zeroVec(),
		IPntB:      diff(h.IHubPntBc, scaled(h.Mass, mxm(rTilde, rTilde))),
		IPrimePntB: mat64.NewDense(3, 3, nil),
	}
	return nil
}

// Sigma returns the current hub attitude.
func (h *Hub) Sigma() *MRP {
	return NewMRP(h.sigma.State())
}

// Omega returns the current hub angular velocity in B frame components.
func (h *Hub) Omega() []float64 {
	return h.omega.State()
}

// Position returns the current inertial position of B.
func (h *Hub) Position() []float64 {
	return h.position.State()
}

// Velocity returns the current inertial velocity of B.
func (h *Hub) Velocity() []float64 {
	return h.velocity.State()
}

// energyMomContributions returns the hub angular momentum about B (B frame) and its rotational
// energy relative to B.
func (h *Hub) energyMomContributions(omegaBN []float64) (hPntB *mat64.Vector, rotEnergy float64) {
	omega := vec3(omegaBN)
	rBcB := vec3(h.RBcB)
	rDotBcB := mxv(tilde(omega), rBcB)
	iw := mxv(h.IHubPntBc, omega)
	hPntB = vsum(iw, vscaled(h.Mass, mxv(tilde(rBcB), rDotBcB)))
	rotEnergy = 0.5*vdot(omega, iw) + 0.5*h.Mass*vdot(rDotBcB, rDotBcB)
	return
}

package sbdyn

import (
	"fmt"

	"github.com/ChristopherRabotin/gokalman"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// Phase is the position of an effector within a simulation step.
type Phase uint8

const (
	// PhaseUnconfigured is the phase of a freshly built effector.
	PhaseUnconfigured Phase = iota
	// PhaseRegistered is reached once the effector states are registered.
	PhaseRegistered
	// PhaseMassPropsReady is reached once the mass properties of the current states are computed.
	PhaseMassPropsReady
	// PhaseContributionsReady is reached once the back-substitution contributions are computed.
	PhaseContributionsReady
	// PhaseDerivativesReady is reached once the state derivatives are computed.
	PhaseDerivativesReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseRegistered:
		return "registered"
	case PhaseMassPropsReady:
		return "massPropsReady"
	case PhaseContributionsReady:
		return "contributionsReady"
	case PhaseDerivativesReady:
		return "derivativesReady"
	}
	panic(fmt.Errorf("cannot stringify unknown phase %d", p))
}

// require returns ErrOutOfOrder unless the phase is one of the allowed ones.
func (p Phase) require(op string, allowed ...Phase) error {
	for _, a := range allowed {
		if p == a {
			return nil
		}
	}
	return errors.Wrapf(ErrOutOfOrder, "%s called in phase %s", op, p)
}

// EffectorMassProps are the contributions of an effector to the vehicle mass properties,
// all about or relative to the hub reference point B and in B frame components.
type EffectorMassProps struct {
	Mass       float64
	RCB        *mat64.Vector // center of mass
	RPrimeCB   *mat64.Vector // body frame derivative of the center of mass
	IPntB      *mat64.Dense  // inertia about B
	IPrimePntB *mat64.Dense  // body frame derivative of the inertia about B
}

// BackSubMatrices are the blocks of the hub equations of motion:
//   A r̈ + B ω̇ = vecTrans
//   C r̈ + D ω̇ = vecRot
// where r̈ is the inertial acceleration of B and ω̇ the hub angular acceleration, both in B frame components.
type BackSubMatrices struct {
	MatrixA, MatrixB, MatrixC, MatrixD *mat64.Dense
	VecTrans, VecRot                   *mat64.Vector
}

// NewBackSubMatrices returns zeroed back-substitution matrices.
func NewBackSubMatrices() *BackSubMatrices {
	return &BackSubMatrices{
		MatrixA:  mat64.NewDense(3, 3, nil),
		MatrixB:  mat64.NewDense(3, 3, nil),
		MatrixC:  mat64.NewDense(3, 3, nil),
		MatrixD:  mat64.NewDense(3, 3, nil),
		VecTrans: zeroVec(),
		VecRot:   zeroVec(),
	}
}

// Add sums the provided contributions into these matrices.
func (b *BackSubMatrices) Add(o *BackSubMatrices) {
	b.MatrixA = sum(b.MatrixA, o.MatrixA)
	b.MatrixB = sum(b.MatrixB, o.MatrixB)
	b.MatrixC = sum(b.MatrixC, o.MatrixC)
	b.MatrixD = sum(b.MatrixD, o.MatrixD)
	b.VecTrans = vsum(b.VecTrans, o.VecTrans)
	b.VecRot = vsum(b.VecRot, o.VecRot)
}

// Solve returns the hub angular acceleration and the inertial acceleration of B, in B frame components.
func (b *BackSubMatrices) Solve() (omegaDot, rDDot *mat64.Vector, err error) {
	var aInv, mInv mat64.Dense
	if err = aInv.Inverse(b.MatrixA); err != nil {
		return nil, nil, errors.Wrap(err, "translational block is singular")
	}
	caInv := mxm(b.MatrixC, &aInv)
	if err = mInv.Inverse(diff(b.MatrixD, mxm(caInv, b.MatrixB))); err != nil {
		return nil, nil, errors.Wrap(err, "rotational block is singular")
	}
	omegaDot = mxv(&mInv, vdiff(b.VecRot, mxv(caInv, b.VecTrans)))
	rDDot = mxv(&aInv, vdiff(b.VecTrans, mxv(b.MatrixB, omegaDot)))
	return omegaDot, rDDot, nil
}

// addHubTerms adds the rigid vehicle terms of the equations of motion.
func (b *BackSubMatrices) addHubTerms(mSC float64, c, cPrime, omega, gB *mat64.Vector, iSCPntB, iSCPrimePntB *mat64.Dense) {
	cTilde := tilde(c)
	omegaTilde := tilde(omega)
	b.MatrixA = sum(b.MatrixA, gokalman.ScaledDenseIdentity(3, mSC))
	b.MatrixB = sum(b.MatrixB, scaled(-mSC, cTilde))
	b.MatrixC = sum(b.MatrixC, scaled(mSC, cTilde))
	b.MatrixD = sum(b.MatrixD, iSCPntB)
	b.VecTrans = vsum(b.VecTrans,
		vscaled(-2*mSC, mxv(omegaTilde, cPrime)),
		vscaled(-mSC, mxv(mxm(omegaTilde, omegaTilde), c)),
		vscaled(mSC, gB))
	b.VecRot = vsum(b.VecRot,
		vscaled(-1, mxv(mxm(omegaTilde, iSCPntB), omega)),
		vscaled(-1, mxv(iSCPrimePntB, omega)),
		vscaled(mSC, mxv(cTilde, gB)))
}

// StateEffector is a body with its own states attached to the hub and coupled to it with the
// back-substitution method. Within one step, the operations must be called in the order
// UpdateEffectorMassProps, UpdateContributions, ComputeDerivatives.
type StateEffector interface {
	// AttachTo prepends the vehicle name to the state names. Must be called before RegisterStates.
	AttachTo(spacecraft string)
	RegisterStates(m *StateManager) error
	LinkInStates(m *StateManager) error
	Reset() error
	UpdateEffectorMassProps(t float64) (EffectorMassProps, error)
	UpdateContributions(t float64, contr *BackSubMatrices, sigmaBN, omegaBN, gN []float64) error
	ComputeDerivatives(t float64, rDDotBN, omegaDotBN, sigmaBN []float64) error
	UpdateEnergyMomContributions(t float64, omegaBN []float64) (rotAngMomPntB []float64, rotEnergy float64, err error)
	UpdateState(t float64) error
	Phase() Phase
}

// hubLink holds the read-only references to the hub states an effector needs. The vehicle
// center of mass is not linked: contributions are written about B and the spacecraft adds the
// center of mass terms itself.
type hubLink struct {
	sigma, omega, position, velocity StateReader
}

func linkHub(m *StateManager, spacecraft string) (*hubLink, error) {
	l := &hubLink{}
	refs := []*StateReader{&l.sigma, &l.omega, &l.position, &l.velocity}
	for i, name := range []string{"hubSigma", "hubOmega", "hubPosition", "hubVelocity"} {
		s, err := m.StateObject(spacecraft + name)
		if err != nil {
			return nil, errors.Wrap(err, "linking hub")
		}
		*refs[i] = s
	}
	return l, nil
}

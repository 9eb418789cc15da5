package sbdyn

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

const (
	// MinHingeInertia is the smallest inertia about the hinge axis (kg.m^2) accepted by Reset.
	MinHingeInertia = 1e-12
	// minHingeAxisNorm is the smallest norm of the user provided hinge axis which is normalized.
	minHingeAxisNorm = 0.01
)

// SpinningBody is a rigid appendage rotating about a single axis fixed in the hub.
// Frame names: B is the hub frame, S the spinning body frame (S0 at θ=0), N the inertial frame.
// Point names: B the hub reference point, S the hinge point, Sc the spinning body center of mass.
type SpinningBody struct {
	Name         string
	Mass         float64      // kg
	IPntSc       *mat64.Dense // inertia about Sc in S frame components, kg.m^2
	RSB          []float64    // hinge position relative to B in B frame components, m
	SHat         []float64    // spin axis, identical in S and S0 frame components
	RScS         []float64    // Sc position relative to the hinge in S frame components, m
	DCMS0B       *mat64.Dense // [S0B], maps B frame components into S0 frame components
	ThetaInit    float64      // rad
	ThetaDotInit float64      // rad/s
	K            float64      // spring coefficient, N.m/rad
	C            float64      // damping coefficient, N.m.s/rad
	U            float64      // motor torque, N.m

	MotorTorqueInMsg   *Message[MotorTorqueMsg]
	SpinningBodyOutMsg *Message[HingedRigidBodyMsg]
	ConfigLogOutMsg    *Message[SCStatesMsg]

	id                  uint64
	nameOfThetaState    string
	nameOfThetaDotState string
	thetaState          *StateData
	thetaDotState       *StateData
	hub                 *hubLink
	phase               Phase
	locked              bool // degenerate spin axis
	logger              kitlog.Logger

	// Recomputed at every step.
	theta, thetaDot float64
	dcmBS           *mat64.Dense
	sHatB           *mat64.Vector
	rScSB, rScBB    *mat64.Vector
	rTildeScBB      *mat64.Dense
	iPntScB         *mat64.Dense
	omegaSBB        *mat64.Vector
	omegaTildeSBB   *mat64.Dense
	rPrimeScSB      *mat64.Vector
	rPrimeScBB      *mat64.Vector
	props           EffectorMassProps
	dTheta, cTheta  float64
	aTheta, bTheta  *mat64.Vector
	thetaDDot       float64

	// Inertial states.
	sigmaSN  *MRP
	rScNN    []float64
	vScNN    []float64
	omegaSNS []float64
}

// NewSpinningBody returns a spinning body with zeroed configuration, an identity inertia and an
// identity [S0B]. Its identifier is drawn from the provided allocator.
func NewSpinningBody(name string, ids *IDAllocator, logger kitlog.Logger) *SpinningBody {
	id := ids.Next()
	if logger == nil {
		logger = SBLogger(name)
	}
	return &SpinningBody{
		Name:                name,
		IPntSc:              mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}),
		RSB:                 []float64{0, 0, 0},
		SHat:                []float64{0, 0, 0},
		RScS:                []float64{0, 0, 0},
		DCMS0B:              mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}),
		id:                  id,
		nameOfThetaState:    fmt.Sprintf("spinningBodyTheta%d", id),
		nameOfThetaDotState: fmt.Sprintf("spinningBodyThetaDot%d", id),
		logger:              logger,
	}
}

// ID returns the identifier of this spinning body.
func (sb *SpinningBody) ID() uint64 {
	return sb.id
}

// StateNames returns the names of the θ and θ̇ states.
func (sb *SpinningBody) StateNames() (theta, thetaDot string) {
	return sb.nameOfThetaState, sb.nameOfThetaDotState
}

// Phase implements the StateEffector interface.
func (sb *SpinningBody) Phase() Phase {
	return sb.phase
}

// AttachTo implements the StateEffector interface.
func (sb *SpinningBody) AttachTo(spacecraft string) {
	sb.nameOfThetaState = spacecraft + sb.nameOfThetaState
	sb.nameOfThetaDotState = spacecraft + sb.nameOfThetaDotState
}

// RegisterStates implements the StateEffector interface.
func (sb *SpinningBody) RegisterStates(m *StateManager) (err error) {
	if err = sb.phase.require("RegisterStates", PhaseUnconfigured); err != nil {
		return err
	}
	if sb.thetaState, err = m.RegisterScalarState(sb.nameOfThetaState, sb.ThetaInit); err != nil {
		return errors.Wrapf(err, "registering %s", sb.Name)
	}
	if sb.thetaDotState, err = m.RegisterScalarState(sb.nameOfThetaDotState, sb.ThetaDotInit); err != nil {
		return errors.Wrapf(err, "registering %s", sb.Name)
	}
	sb.phase = PhaseRegistered
	return nil
}

// LinkInStates implements the StateEffector interface.
func (sb *SpinningBody) LinkInStates(m *StateManager) (err error) {
	if sb.phase == PhaseUnconfigured {
		return errors.Wrapf(ErrNotRegistered, "%s", sb.Name)
	}
	sb.hub, err = linkHub(m, spacecraftPrefix(sb.nameOfThetaState, sb.id))
	return err
}

// spacecraftPrefix recovers the vehicle name prepended to the θ state name.
func spacecraftPrefix(thetaStateName string, id uint64) string {
	base := fmt.Sprintf("spinningBodyTheta%d", id)
	return thetaStateName[:len(thetaStateName)-len(base)]
}

// Reset normalizes the spin axis and validates the inertia about the hinge axis.
// A spin axis with a near zero norm is logged and left as is, and the hinge is then locked.
// A negative mass is rejected.
func (sb *SpinningBody) Reset() error {
	if sb.Mass < 0 {
		return errors.Errorf("%s: mass must not be negative, got %f kg", sb.Name, sb.Mass)
	}
	if norm(sb.SHat) <= minHingeAxisNorm {
		sb.logger.Log("level", "error", "subsys", "spinningbody", "name", sb.Name, "message", "norm of sHat must be greater than 0, sHat may not have been set")
		sb.locked = true
		return nil
	}
	sb.locked = false
	sb.SHat = unit(sb.SHat)
	// The inertia about the spin axis does not depend on θ, so S frame components suffice.
	sHat := vec3(sb.SHat)
	rTilde := tilde(vec3(sb.RScS))
	iPntS := diff(sb.IPntSc, scaled(sb.Mass, mxm(rTilde, rTilde)))
	if d := vdot(sHat, mxv(iPntS, sHat)); d <= MinHingeInertia {
		return errors.Wrapf(ErrDegenerateInertia, "%s: %g kg.m^2", sb.Name, d)
	}
	return nil
}

// UpdateEffectorMassProps computes the mass properties of the spinning body at its current θ.
func (sb *SpinningBody) UpdateEffectorMassProps(t float64) (EffectorMassProps, error) {
	if sb.phase == PhaseUnconfigured {
		return EffectorMassProps{}, errors.Wrapf(ErrNotRegistered, "%s", sb.Name)
	}
	sb.theta = sb.thetaState.Scalar()
	sb.thetaDot = sb.thetaDotState.Scalar()

	// [BS] = [S0B]^T [S0S], where S0 is S rotated by -θ about sHat.
	sHatS := vec3(sb.SHat)
	dcmS0S := PRV2DCM(asSlice(vscaled(-sb.theta, sHatS)))
	sb.dcmBS = mxm(sb.DCMS0B.T(), dcmS0S)
	sb.sHatB = mxv(sb.dcmBS, sHatS)

	// Center of mass relative to B.
	sb.rScSB = mxv(sb.dcmBS, vec3(sb.RScS))
	sb.rScBB = vsum(sb.rScSB, vec3(sb.RSB))
	sb.rTildeScBB = tilde(sb.rScBB)

	// Inertia about B.
	sb.iPntScB = mxm(sb.dcmBS, sb.IPntSc, sb.dcmBS.T())
	iPntBB := diff(sb.iPntScB, scaled(sb.Mass, mxm(sb.rTildeScBB, sb.rTildeScBB)))

	// The hinge is fixed in B, so the center of mass only rotates.
	sb.omegaSBB = vscaled(sb.thetaDot, sb.sHatB)
	sb.omegaTildeSBB = tilde(sb.omegaSBB)
	sb.rPrimeScSB = mxv(sb.omegaTildeSBB, sb.rScSB)
	sb.rPrimeScBB = vec3(asSlice(sb.rPrimeScSB))

	rPrimeTildeScBB := tilde(sb.rPrimeScBB)
	iPrimePntBB := diff(
		diff(mxm(sb.omegaTildeSBB, sb.iPntScB), mxm(sb.iPntScB, sb.omegaTildeSBB)),
		scaled(sb.Mass, sum(mxm(rPrimeTildeScBB, sb.rTildeScBB), mxm(sb.rTildeScBB, rPrimeTildeScBB))))

	sb.props = EffectorMassProps{
		Mass:       sb.Mass,
		RCB:        vec3(asSlice(sb.rScBB)),
		RPrimeCB:   vec3(asSlice(sb.rPrimeScBB)),
		IPntB:      iPntBB,
		IPrimePntB: iPrimePntBB,
	}
	sb.phase = PhaseMassPropsReady
	return sb.props, nil
}

// UpdateContributions writes the back-substitution contributions of this spinning body in contr,
// given the hub attitude, the hub angular velocity (B frame) and the gravity acceleration (N frame).
func (sb *SpinningBody) UpdateContributions(t float64, contr *BackSubMatrices, sigmaBN, omegaBN, gN []float64) error {
	if err := sb.phase.require("UpdateContributions", PhaseMassPropsReady, PhaseContributionsReady); err != nil {
		return err
	}
	dcmBN := NewMRP(sigmaBN).DCM()
	gB := mxv(dcmBN, vec3(gN))

	omegaBNB := vec3(omegaBN)
	omegaTildeBNB := tilde(omegaBNB)
	omegaSNB := vsum(sb.omegaSBB, omegaBNB)
	omegaTildeSNB := tilde(omegaSNB)

	// Inertia about the hinge point S.
	rTildeScSB := tilde(sb.rScSB)
	iPntSB := diff(sb.iPntScB, scaled(sb.Mass, mxm(rTildeScSB, rTildeScSB)))
	sb.dTheta = vdot(sb.sHatB, mxv(iPntSB, sb.sHatB))

	mrs := vscaled(sb.Mass, mxv(rTildeScSB, sb.sHatB))
	if sb.locked || sb.dTheta <= MinHingeInertia {
		// Locked hinge: no finite angular acceleration can be defined.
		sb.aTheta, sb.bTheta, sb.cTheta = zeroVec(), zeroVec(), 0
	} else {
		rSBB := vec3(sb.RSB)
		rTildeSBB := tilde(rSBB)
		sb.aTheta = vscaled(1/sb.dTheta, mrs)
		sb.bTheta = vscaled(-1/sb.dTheta, mxv(diff(iPntSB, scaled(sb.Mass, mxm(rTildeSBB, rTildeScSB))), sb.sHatB))

		rDotSBB := mxv(omegaTildeBNB, rSBB)
		gravityTorquePntSB := vscaled(sb.Mass, mxv(rTildeScSB, gB))
		torque := vsum(gravityTorquePntSB,
			vscaled(-1, mxv(mxm(omegaTildeSNB, iPntSB), omegaSNB)),
			vscaled(-1, mxv(mxm(iPntSB, omegaTildeBNB), sb.omegaSBB)),
			vscaled(-sb.Mass, mxv(mxm(rTildeScSB, omegaTildeBNB), rDotSBB)))
		sb.cTheta = (vdot(sb.sHatB, torque) + sb.U - sb.K*sb.theta - sb.C*sb.thetaDot) / sb.dTheta
	}

	// Translation.
	contr.MatrixA = scaled(-1, outer(mrs, sb.aTheta))
	contr.MatrixB = scaled(-1, outer(mrs, sb.bTheta))
	contr.VecTrans = vsum(vscaled(-sb.Mass, mxv(sb.omegaTildeSBB, sb.rPrimeScSB)), vscaled(sb.cTheta, mrs))

	// Rotation.
	is := mxv(diff(sb.iPntScB, scaled(sb.Mass, mxm(sb.rTildeScBB, rTildeScSB))), sb.sHatB)
	contr.MatrixC = outer(is, sb.aTheta)
	contr.MatrixD = outer(is, sb.bTheta)
	contr.VecRot = vsum(vscaled(-1, mxv(mxm(omegaTildeSNB, sb.iPntScB), sb.omegaSBB)),
		vscaled(-sb.Mass, mxv(mxm(omegaTildeBNB, sb.rTildeScBB), sb.rPrimeScBB)),
		vscaled(-sb.Mass, mxv(mxm(sb.rTildeScBB, sb.omegaTildeSBB), sb.rPrimeScSB)),
		vscaled(-sb.cTheta, is))

	sb.phase = PhaseContributionsReady
	return nil
}

// ComputeDerivatives sets the derivatives of θ and θ̇ given the inertial acceleration of B
// (N frame), the hub angular acceleration (B frame) and the hub attitude.
func (sb *SpinningBody) ComputeDerivatives(t float64, rDDotBN, omegaDotBN, sigmaBN []float64) error {
	if err := sb.phase.require("ComputeDerivatives", PhaseContributionsReady); err != nil {
		return err
	}
	rDDotBNB := mxv(NewMRP(sigmaBN).DCM(), vec3(rDDotBN))
	sb.thetaDDot = vdot(sb.aTheta, rDDotBNB) + vdot(sb.bTheta, vec3(omegaDotBN)) + sb.cTheta
	sb.thetaState.SetDerivative([]float64{sb.thetaDotState.Scalar()})
	sb.thetaDotState.SetDerivative([]float64{sb.thetaDDot})
	sb.phase = PhaseDerivativesReady
	return nil
}

// UpdateEnergyMomContributions returns the rotational angular momentum about B (B frame) and the
// rotational energy of this spinning body, including the energy stored in the spring.
func (sb *SpinningBody) UpdateEnergyMomContributions(t float64, omegaBN []float64) (rotAngMomPntB []float64, rotEnergy float64, err error) {
	if sb.phase < PhaseMassPropsReady {
		return nil, 0, errors.Wrapf(ErrOutOfOrder, "UpdateEnergyMomContributions called in phase %s", sb.phase)
	}
	omegaBNB := vec3(omegaBN)
	omegaSNB := vsum(sb.omegaSBB, omegaBNB)
	rDotScBB := vsum(sb.rPrimeScBB, mxv(tilde(omegaBNB), sb.rScBB))
	h := vsum(mxv(sb.iPntScB, omegaSNB), vscaled(sb.Mass, mxv(sb.rTildeScBB, rDotScBB)))
	rotEnergy = 0.5*vdot(omegaSNB, mxv(sb.iPntScB, omegaSNB)) + 0.5*sb.Mass*vdot(rDotScBB, rDotScBB) + 0.5*sb.K*sb.theta*sb.theta
	return asSlice(h), rotEnergy, nil
}

// UpdateState reads the motor torque command, computes the inertial states of the spinning body
// from the current states and writes the linked output messages.
func (sb *SpinningBody) UpdateState(t float64) error {
	if sb.hub == nil {
		return errors.Wrapf(ErrNotLinked, "%s", sb.Name)
	}
	if sb.MotorTorqueInMsg.IsLinked() && sb.MotorTorqueInMsg.IsWritten() {
		sb.U = sb.MotorTorqueInMsg.Read().MotorTorque
	}
	if _, err := sb.UpdateEffectorMassProps(t); err != nil {
		return err
	}
	sb.computeInertialStates()

	if sb.SpinningBodyOutMsg.IsLinked() {
		sb.SpinningBodyOutMsg.Write(sb.HingeTelemetry())
	}
	if sb.ConfigLogOutMsg.IsLinked() {
		sb.ConfigLogOutMsg.Write(SCStatesMsg{
			Position: sb.rScNN,
			Velocity: sb.vScNN,
			Sigma:    sb.sigmaSN.Slice(),
			Omega:    sb.omegaSNS,
		})
	}
	return nil
}

// computeInertialStates reconstructs the attitude, position and velocity of the spinning body
// with respect to the inertial frame.
func (sb *SpinningBody) computeInertialStates() {
	dcmBN := NewMRP(sb.hub.sigma.State()).DCM()
	omegaBNB := vec3(sb.hub.omega.State())

	sb.sigmaSN = MRPFromDCM(mxm(sb.dcmBS.T(), dcmBN))

	rDotScBB := vsum(sb.rPrimeScBB, mxv(tilde(omegaBNB), sb.rScBB))
	sb.rScNN = asSlice(vsum(vec3(sb.hub.position.State()), mxv(dcmBN.T(), sb.rScBB)))
	sb.vScNN = asSlice(vsum(vec3(sb.hub.velocity.State()), mxv(dcmBN.T(), rDotScBB)))
	sb.omegaSNS = asSlice(mxv(sb.dcmBS.T(), vsum(omegaBNB, sb.omegaSBB)))
}

// HingeTelemetry returns the current θ and θ̇, or their initial values before registration.
func (sb *SpinningBody) HingeTelemetry() HingedRigidBodyMsg {
	if sb.thetaState == nil {
		return HingedRigidBodyMsg{Theta: sb.ThetaInit, ThetaDot: sb.ThetaDotInit}
	}
	return HingedRigidBodyMsg{Theta: sb.thetaState.Scalar(), ThetaDot: sb.thetaDotState.Scalar()}
}

// DCMBS returns the [BS] of the last mass properties update.
func (sb *SpinningBody) DCMBS() *mat64.Dense {
	return mat64.DenseCopyOf(sb.dcmBS)
}

// Coefficients returns the back-substitution coefficients of the last contributions update:
// θ̈ = aTheta·r̈_B + bTheta·ω̇ + cTheta, and the inertia about the hinge axis dTheta.
func (sb *SpinningBody) Coefficients() (aTheta, bTheta []float64, cTheta, dTheta float64) {
	return asSlice(sb.aTheta), asSlice(sb.bTheta), sb.cTheta, sb.dTheta
}

// Locked returns whether the hinge is locked because of a degenerate spin axis.
func (sb *SpinningBody) Locked() bool {
	return sb.locked
}

// ThetaDDot returns the angular acceleration of the last derivatives update.
func (sb *SpinningBody) ThetaDDot() float64 {
	return sb.thetaDDot
}

// InertialState returns the position and velocity of Sc and the attitude of S, in the inertial frame,
// as of the last UpdateState.
func (sb *SpinningBody) InertialState() (rScN, vScN []float64, sigmaSN *MRP) {
	return sb.rScNN, sb.vScNN, sb.sigmaSN
}

func (sb *SpinningBody) String() string {
	return fmt.Sprintf("%s (#%d) θ=%f rad θ̇=%f rad/s", sb.Name, sb.id, sb.theta, sb.thetaDot)
}

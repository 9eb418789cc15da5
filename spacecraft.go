package sbdyn

import (
	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// hinge is anything which publishes hinge telemetry.
type hinge interface {
	HingeTelemetry() HingedRigidBodyMsg
}

type commandedHinge struct {
	hinge     hinge
	commander TorqueCommander
}

// Spacecraft is a rigid hub with its attached state effectors.
type Spacecraft struct {
	Name         string
	Hub          *Hub
	Effectors    []StateEffector
	Gravity      GravityField // none if nil
	Disturbances Disturbances
	FixedHub     bool // hub held inertially fixed, requires a hub at rest
	Sensors      []*HingeEncoder
	commanders   []commandedHinge
	ids          *IDAllocator
	manager      *StateManager
	logger       kitlog.Logger
	initialized  bool
	// Vehicle mass properties, about B in B frame components.
	mSC                   float64
	c, cPrime             *mat64.Dense // shared with the effectors
	cB, cPrimeB           *mat64.Vector
	iSCPntB, iSCPrimePntB *mat64.Dense
}

// NewSpacecraft returns a spacecraft made of the provided hub. The identifiers of its effectors
// must be drawn from ids, which is reset by Teardown.
func NewSpacecraft(name string, hub *Hub, ids *IDAllocator, logger kitlog.Logger) *Spacecraft {
	if logger == nil {
		logger = SBLogger(name)
	}
	return &Spacecraft{Name: name, Hub: hub, ids: ids, logger: logger}
}

// AddEffector attaches an effector to the hub. Must be called before Initialize.
func (sc *Spacecraft) AddEffector(e StateEffector) {
	if sc.initialized {
		panic(errors.Errorf("cannot add an effector to %s after initialization", sc.Name))
	}
	sc.Effectors = append(sc.Effectors, e)
}

// AddCommander links the motor torque input of the spinning body to the commander output.
func (sc *Spacecraft) AddCommander(sb *SpinningBody, c TorqueCommander) {
	sb.MotorTorqueInMsg = c.Output()
	sc.commanders = append(sc.commanders, commandedHinge{sb, c})
}

// StateManager returns the state manager of this vehicle, nil before initialization.
func (sc *Spacecraft) StateManager() *StateManager {
	return sc.manager
}

// Initialize registers and links all the states, resets the effectors and publishes the initial
// effector states.
func (sc *Spacecraft) Initialize() (err error) {
	if sc.initialized {
		return nil
	}
	if sc.Hub == nil {
		return errors.Errorf("spacecraft %s has no hub", sc.Name)
	}
	if sc.FixedHub && (norm(sc.Hub.OmegaInit) != 0 || norm(sc.Hub.VInit) != 0) {
		return errors.Errorf("fixed hub of %s must be at rest: ω=%+v v=%+v", sc.Name, sc.Hub.OmegaInit, sc.Hub.VInit)
	}
	sc.manager = NewStateManager()
	if err = sc.Hub.registerStates(sc.manager, sc.Name); err != nil {
		return errors.Wrapf(err, "registering hub of %s", sc.Name)
	}
	if sc.c, err = sc.manager.PropertyReference(sc.Name + "centerOfMassSC"); err != nil {
		return err
	}
	if sc.cPrime, err = sc.manager.PropertyReference(sc.Name + "centerOfMassPrimeSC"); err != nil {
		return err
	}
	for _, e := range sc.Effectors {
		e.AttachTo(sc.Name)
		if err = e.RegisterStates(sc.manager); err != nil {
			return err
		}
	}
	for _, e := range sc.Effectors {
		if err = e.LinkInStates(sc.manager); err != nil {
			return err
		}
		if err = e.Reset(); err != nil {
			return err
		}
	}
	if err = sc.updateMassProps(0); err != nil {
		return err
	}
	sc.initialized = true
	if err = sc.step(0); err != nil {
		return err
	}
	sc.logger.Log("level", "info", "subsys", "hub", "status", "initialized", "effectors", len(sc.Effectors), "states", sc.manager.Size(), "mass(kg)", sc.mSC)
	return nil
}

// Teardown resets the identifier allocator: effectors built afterwards start over from the first identifier.
func (sc *Spacecraft) Teardown() {
	if sc.ids != nil {
		sc.ids.Reset()
	}
	sc.initialized = false
	sc.manager = nil
}

// step runs the once per step updates at the current states: commanders, effector states and sensors.
func (sc *Spacecraft) step(t float64) error {
	for _, ch := range sc.commanders {
		ch.commander.Output().Write(MotorTorqueMsg{ch.commander.Command(t, ch.hinge.HingeTelemetry())})
	}
	for _, e := range sc.Effectors {
		if err := e.UpdateState(t); err != nil {
			return err
		}
	}
	for _, s := range sc.Sensors {
		s.Measure(t)
	}
	return nil
}

// updateMassProps sums the hub and effector mass properties.
func (sc *Spacecraft) updateMassProps(t float64) error {
	props := []EffectorMassProps{sc.Hub.massProps}
	for _, e := range sc.Effectors {
		p, err := e.UpdateEffectorMassProps(t)
		if err != nil {
			return err
		}
		props = append(props, p)
	}
	sc.mSC = 0
	mc, mcPrime := zeroVec(), zeroVec()
	sc.iSCPntB = mat64.NewDense(3, 3, nil)
	sc.iSCPrimePntB = mat64.NewDense(3, 3, nil)
	for _, p := range props {
		sc.mSC += p.Mass
		mc = vsum(mc, vscaled(p.Mass, p.RCB))
		mcPrime = vsum(mcPrime, vscaled(p.Mass, p.RPrimeCB))
		sc.iSCPntB = sum(sc.iSCPntB, p.IPntB)
		sc.iSCPrimePntB = sum(sc.iSCPrimePntB, p.IPrimePntB)
	}
	sc.cB = vscaled(1/sc.mSC, mc)
	sc.cPrimeB = vscaled(1/sc.mSC, mcPrime)
	for i := 0; i < 3; i++ {
		sc.c.Set(i, 0, sc.cB.At(i, 0))
		sc.cPrime.Set(i, 0, sc.cPrimeB.At(i, 0))
	}
	return nil
}

// centerOfMass returns the inertial position and velocity of the vehicle center of mass.
func (sc *Spacecraft) centerOfMass(dcmNB mat64.Matrix, omegaBN, rBN, vBN []float64) (rCN, vCN *mat64.Vector) {
	rCN = vsum(vec3(rBN), mxv(dcmNB, sc.cB))
	cDotB := vsum(sc.cPrimeB, mxv(tilde(vec3(omegaBN)), sc.cB))
	vCN = vsum(vec3(vBN), mxv(dcmNB, cDotB))
	return
}

// equationsOfMotion computes the derivatives of all the states at the current states.
func (sc *Spacecraft) equationsOfMotion(t float64) error {
	if err := sc.updateMassProps(t); err != nil {
		return err
	}
	sigma := sc.Hub.Sigma()
	omega := sc.Hub.Omega()
	rBN, vBN := sc.Hub.Position(), sc.Hub.Velocity()
	dcmBN := sigma.DCM()
	dcmNB := dcmBN.T()
	rCN, vCN := sc.centerOfMass(dcmNB, omega, rBN, vBN)

	gN := []float64{0, 0, 0}
	if sc.Gravity != nil {
		gN = sc.Gravity.Acceleration(asSlice(rCN))
	}

	contr := NewBackSubMatrices()
	for _, e := range sc.Effectors {
		ec := NewBackSubMatrices()
		if err := e.UpdateContributions(t, ec, sigma.Slice(), omega, gN); err != nil {
			return err
		}
		contr.Add(ec)
	}

	omegaDot, rDDotN := zeroVec(), zeroVec()
	if !sc.FixedHub {
		gB := mxv(dcmBN, vec3(gN))
		contr.addHubTerms(sc.mSC, sc.cB, sc.cPrimeB, vec3(omega), gB, sc.iSCPntB, sc.iSCPrimePntB)
		forceN, torqueB := sc.Disturbances.Perturb(t, asSlice(rCN), asSlice(vCN), sigma, omega)
		forceB := mxv(dcmBN, vec3(forceN))
		contr.VecTrans = vsum(contr.VecTrans, forceB)
		// The force is applied at the center of mass.
		contr.VecRot = vsum(contr.VecRot, vec3(torqueB), mxv(tilde(sc.cB), forceB))
		var rDDotB *mat64.Vector
		var err error
		if omegaDot, rDDotB, err = contr.Solve(); err != nil {
			return errors.Wrapf(err, "solving the equations of motion of %s", sc.Name)
		}
		rDDotN = mxv(dcmNB, rDDotB)
	}

	for _, e := range sc.Effectors {
		if err := e.ComputeDerivatives(t, asSlice(rDDotN), asSlice(omegaDot), sigma.Slice()); err != nil {
			return err
		}
	}

	if sc.FixedHub {
		for _, s := range []*StateData{sc.Hub.position, sc.Hub.velocity, sc.Hub.sigma, sc.Hub.omega} {
			s.SetDerivative([]float64{0, 0, 0})
		}
		return nil
	}
	sc.Hub.position.SetDerivative(vBN)
	sc.Hub.velocity.SetDerivative(asSlice(rDDotN))
	sc.Hub.sigma.SetDerivative(asSlice(vscaled(0.25, mxv(sigma.B(), vec3(omega)))))
	sc.Hub.omega.SetDerivative(asSlice(omegaDot))
	return nil
}

// EnergyMomentum returns the total energy of the vehicle (kinetic, spring and gravity potential)
// and its total angular momentum about the inertial origin, in N frame components.
func (sc *Spacecraft) EnergyMomentum(t float64) (energy float64, hN []float64, err error) {
	if !sc.initialized {
		return 0, nil, errors.Wrapf(ErrNotRegistered, "%s", sc.Name)
	}
	if err = sc.updateMassProps(t); err != nil {
		return 0, nil, err
	}
	omega := sc.Hub.Omega()
	hPntB, rotEnergy := sc.Hub.energyMomContributions(omega)
	for _, e := range sc.Effectors {
		h, en, err := e.UpdateEnergyMomContributions(t, omega)
		if err != nil {
			return 0, nil, err
		}
		hPntB = vsum(hPntB, vec3(h))
		rotEnergy += en
	}

	dcmNB := sc.Hub.Sigma().DCM().T()
	rBN, vBN := sc.Hub.Position(), sc.Hub.Velocity()
	rCN, _ := sc.centerOfMass(dcmNB, omega, rBN, vBN)
	cN := MxV33(dcmNB, asSlice(sc.cB))
	cDotN := asSlice(mxv(dcmNB, vsum(sc.cPrimeB, mxv(tilde(vec3(omega)), sc.cB))))

	// Angular momentum and energy about B, transported to the inertial origin.
	h := MxV33(dcmNB, asSlice(hPntB))
	for _, v := range [][]float64{cross(rBN, vBN), cross(rBN, cDotN), cross(cN, vBN)} {
		for j := 0; j < 3; j++ {
			h[j] += sc.mSC * v[j]
		}
	}
	energy = rotEnergy + 0.5*sc.mSC*dot(vBN, vBN) + sc.mSC*dot(vBN, cDotN)
	if sc.Gravity != nil {
		energy += sc.mSC * sc.Gravity.Potential(asSlice(rCN))
	}
	return energy, h, nil
}

// hinges returns the telemetry of every effector which has a hinge.
func (sc *Spacecraft) hinges() (telemetry []HingedRigidBodyMsg) {
	for _, e := range sc.Effectors {
		if h, ok := e.(hinge); ok {
			telemetry = append(telemetry, h.HingeTelemetry())
		}
	}
	return
}

package sbdyn

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ChristopherRabotin/ode"
	"github.com/pkg/errors"
)

const (
	// StepSize is the default step size of propagation.
	StepSize = 10 * time.Millisecond
)

/* Handles the propagation of a spacecraft. */

// Mission propagates a spacecraft between two epochs.
type Mission struct {
	Vehicle                    *Spacecraft
	StartDT, StopDT, CurrentDT time.Time
	step                       time.Duration // time step
	elapsed                    float64       // seconds since StartDT
	steps                      uint64
	stopChan                   chan (bool)
	histChan                   chan<- (SimState)
	wg                         sync.WaitGroup
	exportErr                  error
	err                        error
	done                       bool
	// Energy and angular momentum norm at the start of the propagation.
	energy0, h0 float64
}

// NewMission is the same as NewPreciseMission with the default step size.
func NewMission(sc *Spacecraft, start, end time.Time, conf ExportConfig) (*Mission, error) {
	return NewPreciseMission(sc, start, end, StepSize, conf)
}

// NewPreciseMission initializes the spacecraft and returns a new Mission with the provided time step.
func NewPreciseMission(sc *Spacecraft, start, end time.Time, step time.Duration, conf ExportConfig) (*Mission, error) {
	if step <= 0 {
		return nil, errors.Errorf("step must be positive, got %s", step)
	}
	if err := sc.Initialize(); err != nil {
		return nil, errors.Wrapf(err, "initializing %s", sc.Name)
	}
	a := &Mission{Vehicle: sc, StartDT: start.UTC(), StopDT: end.UTC(), CurrentDT: start.UTC(), step: step, stopChan: make(chan (bool), 1)}
	if end.Before(start) {
		sc.logger.Log("level", "warning", "subsys", "prop", "message", "end before start, nothing to propagate")
	}
	// If nothing is exported, then no history is kept.
	if !conf.IsUseless() {
		histChan := make(chan (SimState), 1000) // a 1k entry buffer
		a.histChan = histChan
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := StreamStates(conf, histChan); err != nil {
				a.exportErr = err
				sc.logger.Log("level", "error", "subsys", "export", "err", err)
			}
		}()
	}
	var err error
	if a.energy0, a.h0, err = a.conservation(); err != nil {
		a.closeHistory()
		return nil, err
	}
	a.record()
	return a, nil
}

// conservation returns the total energy and the norm of the total angular momentum.
func (a *Mission) conservation() (float64, float64, error) {
	e, h, err := a.Vehicle.EnergyMomentum(a.elapsed)
	if err != nil {
		return 0, 0, err
	}
	return e, norm(h), nil
}

// record sends the current state to the history, if any.
func (a *Mission) record() {
	if a.histChan == nil {
		return
	}
	e, h, err := a.conservation()
	if err != nil {
		a.err = err
		return
	}
	sc := a.Vehicle
	a.histChan <- SimState{
		DT:       a.CurrentDT,
		T:        a.elapsed,
		Hinges:   sc.hinges(),
		SigmaBN:  sc.Hub.Sigma().Slice(),
		OmegaBN:  sc.Hub.Omega(),
		Energy:   e,
		HNorm:    h,
		Position: sc.Hub.Position(),
	}
}

// LogStatus logs the status of the propagation and vehicle.
func (a *Mission) LogStatus() {
	e, h, err := a.conservation()
	if err != nil {
		a.Vehicle.logger.Log("level", "error", "subsys", "prop", "err", err)
		return
	}
	a.Vehicle.logger.Log("level", "info", "subsys", "prop", "date", a.CurrentDT, "energy(J)", e, "H(Nms)", h, "hinges", fmt.Sprintf("%+v", a.Vehicle.hinges()))
}

// Propagate runs the propagation until StopDT or until StopPropagation is called. It returns
// once all the history is written.
func (a *Mission) Propagate() error {
	a.LogStatus()
	steps, _, solveErr := ode.NewRK4(0, a.step.Seconds(), a).Solve() // Blocking.
	a.steps += steps
	a.done = true
	a.wg.Wait() // Don't return until we're done writing all the files.
	if solveErr != nil {
		return errors.Wrapf(solveErr, "propagating %s", a.Vehicle.Name)
	}
	if a.err != nil {
		return a.err
	}
	e, h, err := a.conservation()
	if err != nil {
		return err
	}
	a.Vehicle.logger.Log("level", "notice", "subsys", "prop", "status", "finished", "duration", a.CurrentDT.Sub(a.StartDT).String(), "steps", a.steps, "ΔE(J)", e-a.energy0, "ΔH(Nms)", h-a.h0)
	return a.exportErr
}

// Steps returns the number of integration steps taken.
func (a *Mission) Steps() uint64 {
	return a.steps
}

// Elapsed returns the propagated duration in seconds.
func (a *Mission) Elapsed() float64 {
	return a.elapsed
}

// StopPropagation is used to stop the propagation before it is completed.
func (a *Mission) StopPropagation() {
	a.stopChan <- true
}

func (a *Mission) closeHistory() {
	if a.histChan != nil {
		close(a.histChan)
		a.histChan = nil
	}
}

// Stop implements the stop call of the integrator. To stop the propagation, call StopPropagation().
func (a *Mission) Stop(t float64) bool {
	select {
	case <-a.stopChan:
		a.closeHistory()
		return true // Stop because there is a request to stop.
	default:
		if a.err != nil || !a.CurrentDT.Add(a.step/2).Before(a.StopDT) {
			a.closeHistory()
			return true // Stop, we've reached the end of the simulation.
		}
	}
	return false
}

// GetState returns the state for the integrator.
func (a *Mission) GetState() []float64 {
	return a.Vehicle.manager.GetState()
}

// SetState sets the updated state, switches the hub attitude to its short representation and
// runs the once per step updates.
func (a *Mission) SetState(t float64, s []float64) {
	sc := a.Vehicle
	sc.manager.SetState(s)
	if sigma := sc.Hub.Sigma(); sigma.Short() {
		sc.Hub.sigma.SetState(sigma.Slice())
	}
	a.elapsed += a.step.Seconds()
	a.CurrentDT = a.StartDT.Add(time.Duration(a.elapsed * float64(time.Second)))
	if err := sc.step(a.elapsed); err != nil {
		a.err = err
		return
	}
	a.record()
}

// Func is the integration function of all the vehicle states.
func (a *Mission) Func(t float64, f []float64) (fDot []float64) {
	sc := a.Vehicle
	sc.manager.SetState(f)
	if err := sc.equationsOfMotion(a.elapsed); err != nil {
		a.err = err
		return make([]float64, len(f))
	}
	fDot = sc.manager.Derivatives()
	for i := range fDot {
		if math.IsNaN(fDot[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ dt=%s\nstate=%+v", i, a.CurrentDT, f))
		}
	}
	return
}

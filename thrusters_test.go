package sbdyn

import (
	"math"
	"testing"
	"time"
)

func TestConstantTorque(t *testing.T) {
	c := NewConstantTorque(-1.5)
	if u := c.Command(10, HingedRigidBodyMsg{1, 2}); u != -1.5 {
		t.Fatalf("u=%f", u)
	}
	if c.Output() == nil || c.Output().IsWritten() {
		t.Fatal("output should be linked and unwritten")
	}
}

func TestHingePD(t *testing.T) {
	assertPanic(t, func() {
		NewHingePD(0, -1, 1, 0)
	})
	assertPanic(t, func() {
		NewHingePD(0, 1, 1, -2)
	})
	pd := NewHingePD(0.5, 2, 3, 0)
	if u := pd.Command(0, HingedRigidBodyMsg{Theta: 1, ThetaDot: 0.1}); math.Abs(u-(-1.3)) > 1e-15 {
		t.Fatalf("u=%f", u)
	}
	pd.MaxTorque = 1
	if u := pd.Command(0, HingedRigidBodyMsg{Theta: 1, ThetaDot: 0.1}); u != -1 {
		t.Fatalf("saturated u=%f", u)
	}
	if u := pd.Command(0, HingedRigidBodyMsg{Theta: -1}); u != 1 {
		t.Fatalf("saturated u=%f", u)
	}
}

func TestHingePDClosedLoop(t *testing.T) {
	sc, sb := testVehicle(NewIDAllocator())
	sc.FixedHub = true
	// Critically damped on the 11 kg.m^2 hinge inertia.
	pd := NewHingePD(0.5, 11, 22, 20)
	sc.AddCommander(sb, pd)
	mission, err := NewPreciseMission(sc, J2000, J2000.Add(20*time.Second), 10*time.Millisecond, ExportConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err = mission.Propagate(); err != nil {
		t.Fatal(err)
	}
	hinge := sb.HingeTelemetry()
	if math.Abs(hinge.Theta-0.5) > 1e-4 || math.Abs(hinge.ThetaDot) > 1e-4 {
		t.Fatalf("hinge did not settle: %+v", hinge)
	}
	if pd.Output().Writes() < 2000 {
		t.Fatalf("torque commanded only %d times", pd.Output().Writes())
	}
}

package sbdyn

import (
	"testing"
	"time"
)

func TestMissionInvalid(t *testing.T) {
	sc, _ := testVehicle(NewIDAllocator())
	if _, err := NewPreciseMission(sc, J2000, J2000.Add(time.Second), 0, ExportConfig{}); err == nil {
		t.Fatal("expected an error with a null step")
	}
	sc = NewSpacecraft("nohub", nil, NewIDAllocator(), nil)
	if _, err := NewMission(sc, J2000, J2000.Add(time.Second), ExportConfig{}); err == nil {
		t.Fatal("expected an error without a hub")
	}
}

func TestMissionEndBeforeStart(t *testing.T) {
	sc, _ := testVehicle(NewIDAllocator())
	mission, err := NewMission(sc, J2000, J2000.Add(-time.Minute), ExportConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err = mission.Propagate(); err != nil {
		t.Fatal(err)
	}
	if mission.Elapsed() != 0 || mission.Steps() != 0 || !mission.CurrentDT.Equal(J2000) {
		t.Fatalf("propagated to %s", mission.CurrentDT)
	}
}

func TestMissionDefaultStep(t *testing.T) {
	sc, sb := testVehicle(NewIDAllocator())
	sb.ThetaDotInit = 0.1
	mission, err := NewMission(sc, J2000, J2000.Add(time.Second), ExportConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err = mission.Propagate(); err != nil {
		t.Fatal(err)
	}
	if dt := mission.CurrentDT.Sub(J2000); dt < time.Second-StepSize/2 || dt > time.Second+StepSize/2 {
		t.Fatalf("stopped after %s", dt)
	}
	if mission.Steps() != 100 {
		t.Fatalf("expected 100 steps, took %d", mission.Steps())
	}
	if len(mission.GetState()) != sc.StateManager().Size() {
		t.Fatal("integrator state differs from the vehicle state")
	}
	if theta := sb.HingeTelemetry().Theta; theta <= 0 {
		t.Fatalf("hinge did not rotate: θ=%f", theta)
	}
}

package sbdyn

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/stat"
)

func TestHingeEncoder(t *testing.T) {
	assertPanic(t, func() {
		NewHingeEncoder(NewMessage[HingedRigidBodyMsg](), 0, 1, 1)
	})
	telemetry := NewMessage[HingedRigidBodyMsg]()
	enc := NewHingeEncoder(telemetry, 1e-4, 1e-6, 42)
	if _, ok := enc.Measure(0); ok {
		t.Fatal("measured unwritten telemetry")
	}
	telemetry.Write(HingedRigidBodyMsg{Theta: 0.3, ThetaDot: -0.1})
	same := NewHingeEncoder(telemetry, 1e-4, 1e-6, 42)
	thetas := make([]float64, 5000)
	for i := range thetas {
		m, ok := enc.Measure(float64(i))
		if !ok {
			t.Fatal("measurement failed")
		}
		if m2, _ := same.Measure(float64(i)); m2 != m {
			t.Fatal("identical seeds should give identical measurements")
		}
		thetas[i] = m.Theta
	}
	mean, std := stat.MeanStdDev(thetas, nil)
	if math.Abs(mean-0.3) > 1e-3 || math.Abs(std-1e-2) > 1e-3 {
		t.Fatalf("θ noise mean=%f std=%f", mean, std)
	}
	last, count := enc.Last()
	if count != 5000 || last.T != 4999 {
		t.Fatalf("last=%s count=%d", last, count)
	}
}

func TestHingeEncoderOnVehicle(t *testing.T) {
	sc, sb := testVehicle(NewIDAllocator())
	sb.SpinningBodyOutMsg = NewMessage[HingedRigidBodyMsg]()
	sb.ThetaDotInit = 0.2
	enc := NewHingeEncoder(sb.SpinningBodyOutMsg, 1e-8, 1e-8, 1)
	sc.Sensors = append(sc.Sensors, enc)
	mission, err := NewPreciseMission(sc, J2000, J2000.Add(time.Second), 10*time.Millisecond, ExportConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err = mission.Propagate(); err != nil {
		t.Fatal(err)
	}
	last, count := enc.Last()
	// Once at initialization and then at every step.
	if count != 101 {
		t.Fatalf("expected 101 measurements, got %d", count)
	}
	if math.Abs(last.Theta-sb.HingeTelemetry().Theta) > 1e-3 {
		t.Fatalf("measured θ=%f, true θ=%f", last.Theta, sb.HingeTelemetry().Theta)
	}
}

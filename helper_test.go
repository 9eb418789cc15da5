package sbdyn

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	return floats.EqualApprox(a, b, 1e-12)
}

func diag(a, b, c float64) *mat64.Dense {
	return mat64.NewDense(3, 3, []float64{a, 0, 0, 0, b, 0, 0, 0, c})
}

// testVehicle returns a hub of 100 kg with a single 10 kg spinning body whose center of mass is
// 1 m away from its hinge, located at B. The inertia about the hinge axis is then 11 kg.m^2.
func testVehicle(ids *IDAllocator) (*Spacecraft, *SpinningBody) {
	sb := NewSpinningBody("panel", ids, kitlog.NewNopLogger())
	sb.Mass = 10
	sb.IPntSc = diag(1, 1, 1)
	sb.SHat = []float64{0, 0, 1}
	sb.RScS = []float64{1, 0, 0}
	sc := NewSpacecraft("sc", NewHub(100, diag(10, 20, 30)), ids, kitlog.NewNopLogger())
	sc.AddEffector(sb)
	return sc, sb
}

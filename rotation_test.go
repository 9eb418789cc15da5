package sbdyn

import (
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
)

func TestR1R2R3(t *testing.T) {
	x := math.Pi / 3.0
	s, c := math.Sincos(x)
	r1 := R1(x)
	r2 := R2(x)
	r3 := R3(x)
	// Test items equal to 1.
	if r1.At(0, 0) != r2.At(1, 1) || r1.At(0, 0) != r3.At(2, 2) || r3.At(2, 2) != 1 {
		t.Fatal("expected R1.At(0, 0) = R2.At(1, 1) = R3.At(2, 2) = 1\n")
	}
	if r1.At(1, 1) != r1.At(2, 2) || r1.At(2, 2) != c || r1.At(1, 2) != s {
		t.Fatal("R1 misplaced items")
	}
	if r2.At(0, 0) != r2.At(2, 2) || r2.At(2, 0) != s {
		t.Fatal("R2 misplaced items")
	}
	if r3.At(1, 1) != r3.At(0, 0) || r3.At(0, 1) != s {
		t.Fatal("R3 misplaced items")
	}
}

func TestPRV2DCM(t *testing.T) {
	if !mat64.Equal(PRV2DCM([]float64{0, 0, 0}), diag(1, 1, 1)) {
		t.Fatal("null PRV is not the exact identity")
	}
	for _, φ := range []float64{-2.5, -0.1, 0.3, math.Pi / 2, 3} {
		if !mat64.EqualApprox(PRV2DCM([]float64{φ, 0, 0}), R1(φ), 1e-14) {
			t.Fatalf("PRV about x of %f != R1", φ)
		}
		if !mat64.EqualApprox(PRV2DCM([]float64{0, φ, 0}), R2(φ), 1e-14) {
			t.Fatalf("PRV about y of %f != R2", φ)
		}
		if !mat64.EqualApprox(PRV2DCM([]float64{0, 0, φ}), R3(φ), 1e-14) {
			t.Fatalf("PRV about z of %f != R3", φ)
		}
	}
	// Opposite rotations cancel out.
	prv := []float64{0.2, -0.4, 0.1}
	if !mat64.EqualApprox(mxm(PRV2DCM(prv), PRV2DCM([]float64{-0.2, 0.4, -0.1})), diag(1, 1, 1), 1e-14) {
		t.Fatal("PRV and its opposite do not cancel out")
	}
	// Orthonormal.
	C := PRV2DCM(prv)
	if !mat64.EqualApprox(mxm(C, C.T()), diag(1, 1, 1), 1e-14) {
		t.Fatal("PRV DCM is not orthonormal")
	}
}

func TestEuler321(t *testing.T) {
	if !mat64.EqualApprox(Euler321(0.4, 0, 0), R3(0.4), 1e-14) {
		t.Fatal("yaw only != R3")
	}
	C := Euler321(0.1, 0.2, 0.3)
	if !mat64.EqualApprox(mxm(C.T(), C), diag(1, 1, 1), 1e-14) {
		t.Fatal("not orthonormal")
	}
}

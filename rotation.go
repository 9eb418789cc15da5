package sbdyn

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// Euler321 returns the DCM of a 3-2-1 (yaw, pitch, roll) Euler angle sequence.
func Euler321(ψ, θ, φ float64) *mat64.Dense {
	return mxm(R1(φ), R2(θ), R3(ψ))
}

// PRV2DCM returns the DCM of a principal rotation vector, i.e. a rotation of |prv| radians
// about prv/|prv|. A null vector returns the exact identity.
func PRV2DCM(prv []float64) *mat64.Dense {
	φ := norm(prv)
	if φ == 0 {
		return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	e := unit(prv)
	sφ, cφ := math.Sincos(φ)
	Σ := 1 - cφ
	return mat64.NewDense(3, 3, []float64{
		e[0]*e[0]*Σ + cφ, e[0]*e[1]*Σ + e[2]*sφ, e[0]*e[2]*Σ - e[1]*sφ,
		e[1]*e[0]*Σ - e[2]*sφ, e[1]*e[1]*Σ + cφ, e[1]*e[2]*Σ + e[0]*sφ,
		e[2]*e[0]*Σ + e[1]*sφ, e[2]*e[1]*Σ - e[0]*sφ, e[2]*e[2]*Σ + cφ})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat64.Matrix, v []float64) (o []float64) {
	return asSlice(mxv(m, mat64.NewVector(len(v), v)))
}

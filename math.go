package sbdyn

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// dot performs the inner product via mat64/BLAS.
func dot(a, b []float64) float64 {
	return mat64.Dot(mat64.NewVector(len(a), a), mat64.NewVector(len(b), b))
}

// cross performs the cross product.
func cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// vec3 returns a new 3x1 mat64.Vector holding a copy of the provided components.
func vec3(v []float64) *mat64.Vector {
	return mat64.NewVector(3, []float64{v[0], v[1], v[2]})
}

// zeroVec returns a new zero 3x1 vector.
func zeroVec() *mat64.Vector {
	return mat64.NewVector(3, nil)
}

// asSlice returns the components of a 3x1 vector.
func asSlice(v *mat64.Vector) []float64 {
	return []float64{v.At(0, 0), v.At(1, 0), v.At(2, 0)}
}

// tilde returns the skew symmetric (cross product) matrix of a 3x1 vector.
func tilde(v *mat64.Vector) *mat64.Dense {
	x, y, z := v.At(0, 0), v.At(1, 0), v.At(2, 0)
	return mat64.NewDense(3, 3, []float64{0, -z, y,
		z, 0, -x,
		-y, x, 0})
}

// mxv multiplies a matrix with a vector into a new vector.
func mxv(m mat64.Matrix, v *mat64.Vector) *mat64.Vector {
	var rVec mat64.Vector
	rVec.MulVec(m, v)
	return &rVec
}

// mxm multiplies any number of matrices, left to right.
func mxm(a, b mat64.Matrix, others ...mat64.Matrix) *mat64.Dense {
	var rslt mat64.Dense
	rslt.Mul(a, b)
	for _, o := range others {
		var next mat64.Dense
		next.Mul(&rslt, o)
		rslt = next
	}
	return &rslt
}

// scaled returns f*m as a new matrix.
func scaled(f float64, m mat64.Matrix) *mat64.Dense {
	var rslt mat64.Dense
	rslt.Scale(f, m)
	return &rslt
}

// sum adds all the provided matrices.
func sum(a mat64.Matrix, others ...mat64.Matrix) *mat64.Dense {
	rslt := mat64.DenseCopyOf(a)
	for _, o := range others {
		var next mat64.Dense
		next.Add(rslt, o)
		rslt = &next
	}
	return rslt
}

// diff returns a - b as a new matrix.
func diff(a, b mat64.Matrix) *mat64.Dense {
	var rslt mat64.Dense
	rslt.Sub(a, b)
	return &rslt
}

// vsum adds all the provided vectors.
func vsum(a *mat64.Vector, others ...*mat64.Vector) *mat64.Vector {
	s := asSlice(a)
	for _, o := range others {
		for i := 0; i < 3; i++ {
			s[i] += o.At(i, 0)
		}
	}
	return vec3(s)
}

// vscaled returns f*v as a new vector.
func vscaled(f float64, v *mat64.Vector) *mat64.Vector {
	return mat64.NewVector(3, []float64{f * v.At(0, 0), f * v.At(1, 0), f * v.At(2, 0)})
}

// outer returns the outer product u*v^T of two 3x1 vectors.
func outer(u, v *mat64.Vector) *mat64.Dense {
	o := mat64.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o.Set(i, j, u.At(i, 0)*v.At(j, 0))
		}
	}
	return o
}

// vdot performs the inner product of two vectors.
func vdot(a, b *mat64.Vector) float64 {
	return mat64.Dot(a, b)
}

// vdiff returns a - b as a new vector.
func vdiff(a, b *mat64.Vector) *mat64.Vector {
	return mat64.NewVector(3, []float64{a.At(0, 0) - b.At(0, 0), a.At(1, 0) - b.At(1, 0), a.At(2, 0) - b.At(2, 0)})
}

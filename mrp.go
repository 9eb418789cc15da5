package sbdyn

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

/*-----*/
/* Modified Rodrigez Parameters */
/*-----*/

// MRP defines Modified Rodrigez Parameters.
type MRP struct {
	s1, s2, s3 float64
}

// NewMRP returns an MRP from its three components.
func NewMRP(s []float64) *MRP {
	return &MRP{s[0], s[1], s[2]}
}

func (s *MRP) squared() float64 {
	return s.s1*s.s1 + s.s2*s.s2 + s.s3*s.s3
}

func (s *MRP) norm() float64 {
	return math.Sqrt(s.squared())
}

// Slice returns the components of this MRP.
func (s *MRP) Slice() []float64 {
	return []float64{s.s1, s.s2, s.s3}
}

// Short refreshes this MRP representation to use its short notation.
// Returns whether the switch to the shadow set happened.
func (s *MRP) Short() bool {
	if s.norm() > 1 {
		sq := s.squared()
		s.s1 = -s.s1 / sq
		s.s2 = -s.s2 / sq
		s.s3 = -s.s3 / sq
		return true
	}
	return false
}

// Equals returns whether both MRPs describe the same attitude, accounting for the shadow set.
func (s *MRP) Equals(o *MRP) bool {
	a := MRP{s.s1, s.s2, s.s3}
	b := MRP{o.s1, o.s2, o.s3}
	a.Short()
	b.Short()
	return floats.EqualApprox(a.Slice(), b.Slice(), 1e-9)
}

// Tilde returns the tilde matrix of this MRP.
// The m parameter allows to multiply directly the Tilde matrix.
func (s *MRP) Tilde(m float64) *mat64.Dense {
	return mat64.NewDense(3, 3, []float64{0, -s.s3 * m, s.s2 * m,
		s.s3 * m, 0, -s.s1 * m,
		-s.s2 * m, s.s1 * m, 0})
}

// OuterProduct returns the outer product of this MRP with itself.
// The m parameter allows to multiply directly the outer product with a scalar.
func (s *MRP) OuterProduct(m float64) *mat64.Dense {
	return mat64.NewDense(3, 3, []float64{
		m * s.s1 * s.s1, m * s.s1 * s.s2, m * s.s1 * s.s3,
		m * s.s2 * s.s1, m * s.s2 * s.s2, m * s.s2 * s.s3,
		m * s.s3 * s.s1, m * s.s3 * s.s2, m * s.s3 * s.s3,
	})
}

// B returns the B matrix for MRP computations, such that dσ/dt = B(σ)ω/4.
func (s *MRP) B() *mat64.Dense {
	sq := 1 - s.squared()
	e1 := mat64.NewDense(3, 3, []float64{sq, 0, 0, 0, sq, 0, 0, 0, sq})
	return sum(e1, s.Tilde(2), s.OuterProduct(2))
}

// DCM returns the direction cosine matrix [BN] of this attitude.
func (s *MRP) DCM() *mat64.Dense {
	sq := s.squared()
	sT := s.Tilde(1)
	f := 1 / math.Pow(1+sq, 2)
	I := mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	return sum(I, scaled(8*f, mxm(sT, sT)), scaled(-4*(1-sq)*f, sT))
}

func (s MRP) String() string {
	return fmt.Sprintf("[%f %f %f]", s.s1, s.s2, s.s3)
}

// MRPFromDCM returns the short MRP set of the provided DCM, going through the Euler parameters
// with Sheppard's method.
func MRPFromDCM(C mat64.Matrix) *MRP {
	tr := C.At(0, 0) + C.At(1, 1) + C.At(2, 2)
	b2 := []float64{(1 + tr) / 4,
		(1 + 2*C.At(0, 0) - tr) / 4,
		(1 + 2*C.At(1, 1) - tr) / 4,
		(1 + 2*C.At(2, 2) - tr) / 4}
	b := make([]float64, 4)
	switch floats.MaxIdx(b2) {
	case 0:
		b[0] = math.Sqrt(b2[0])
		b[1] = (C.At(1, 2) - C.At(2, 1)) / (4 * b[0])
		b[2] = (C.At(2, 0) - C.At(0, 2)) / (4 * b[0])
		b[3] = (C.At(0, 1) - C.At(1, 0)) / (4 * b[0])
	case 1:
		b[1] = math.Sqrt(b2[1])
		b[0] = (C.At(1, 2) - C.At(2, 1)) / (4 * b[1])
		b[2] = (C.At(0, 1) + C.At(1, 0)) / (4 * b[1])
		b[3] = (C.At(2, 0) + C.At(0, 2)) / (4 * b[1])
	case 2:
		b[2] = math.Sqrt(b2[2])
		b[0] = (C.At(2, 0) - C.At(0, 2)) / (4 * b[2])
		b[1] = (C.At(0, 1) + C.At(1, 0)) / (4 * b[2])
		b[3] = (C.At(1, 2) + C.At(2, 1)) / (4 * b[2])
	case 3:
		b[3] = math.Sqrt(b2[3])
		b[0] = (C.At(0, 1) - C.At(1, 0)) / (4 * b[3])
		b[1] = (C.At(2, 0) + C.At(0, 2)) / (4 * b[3])
		b[2] = (C.At(1, 2) + C.At(2, 1)) / (4 * b[3])
	}
	if b[0] < 0 {
		floats.Scale(-1, b)
	}
	return &MRP{b[1] / (1 + b[0]), b[2] / (1 + b[0]), b[3] / (1 + b[0])}
}

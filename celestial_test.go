package sbdyn

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestUniformGravity(t *testing.T) {
	var none UniformGravity
	if !vectorsEqual(none.Acceleration([]float64{1, 2, 3}), []float64{0, 0, 0}) || none.Potential([]float64{1, 2, 3}) != 0 {
		t.Fatal("nil gravity should be null")
	}
	g := UniformGravity{G: []float64{0, 0, -9.81}}
	acc := g.Acceleration(nil)
	acc[2] = 0
	if g.G[2] != -9.81 {
		t.Fatal("acceleration aliases the field")
	}
	if u := g.Potential([]float64{5, 5, 10}); !floats.EqualWithinAbs(u, 98.1, 1e-12) {
		t.Fatalf("U=%f", u)
	}
}

func TestPointMassGravity(t *testing.T) {
	if !Earth.Equals(Earth) || Earth.Equals(Moon) {
		t.Fatal("celestial object equality failed")
	}
	g := PointMassGravity{Earth}
	r := Earth.Radius + 1000e3
	rN := []float64{0, r / math.Sqrt2, r / math.Sqrt2}
	acc := g.Acceleration(rN)
	if !floats.EqualWithinRel(norm(acc), Earth.GM()/(r*r), 1e-14) {
		t.Fatalf("|a|=%f", norm(acc))
	}
	if dot(acc, rN) >= 0 {
		t.Fatal("gravity should point to the center")
	}
	if u := g.Potential(rN); !floats.EqualWithinRel(u, -Earth.GM()/r, 1e-14) {
		t.Fatalf("U=%f", u)
	}
	assertPanic(t, func() {
		g.Acceleration([]float64{1e3, 0, 0})
	})
}

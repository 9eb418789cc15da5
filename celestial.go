package sbdyn

import (
	"fmt"
	"math"
)

// GravityField returns the gravitational acceleration and potential at an inertial position.
type GravityField interface {
	Acceleration(rN []float64) []float64
	Potential(rN []float64) float64
}

// UniformGravity is a constant gravity acceleration, in N frame components.
type UniformGravity struct {
	G []float64
}

// Acceleration implements the GravityField interface.
func (u UniformGravity) Acceleration(rN []float64) []float64 {
	if u.G == nil {
		return []float64{0, 0, 0}
	}
	return []float64{u.G[0], u.G[1], u.G[2]}
}

// Potential implements the GravityField interface.
func (u UniformGravity) Potential(rN []float64) float64 {
	if u.G == nil {
		return 0
	}
	return -dot(u.G, rN)
}

func (u UniformGravity) String() string {
	return fmt.Sprintf("uniform gravity %+v", u.G)
}

// CelestialObject defines a celestial object, in SI units.
type CelestialObject struct {
	Name   string
	Radius float64 // m
	μ      float64 // m^3/s^2
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ
}

// PointMassGravity is the gravity of a celestial object centered at the inertial origin.
type PointMassGravity struct {
	Body CelestialObject
}

// Acceleration implements the GravityField interface.
func (p PointMassGravity) Acceleration(rN []float64) []float64 {
	r := norm(rN)
	if r < p.Body.Radius {
		panic(fmt.Errorf("position %+v is below the surface of %s", rN, p.Body))
	}
	acc := -p.Body.μ / math.Pow(r, 3)
	return []float64{acc * rN[0], acc * rN[1], acc * rN[2]}
}

// Potential implements the GravityField interface.
func (p PointMassGravity) Potential(rN []float64) float64 {
	return -p.Body.μ / norm(rN)
}

func (p PointMassGravity) String() string {
	return "point mass gravity of " + p.Body.Name
}

/* Definitions */

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363e3, 3.98600433e14}

// Moon is the Earth's satellite.
var Moon = CelestialObject{"Moon", 1737.4e3, 4.902800066e12}

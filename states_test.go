package sbdyn

import (
	"testing"

	"github.com/pkg/errors"
)

func TestStateManager(t *testing.T) {
	m := NewStateManager()
	pos, err := m.RegisterState("pos", 3, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = m.RegisterScalarState("theta", 0.5); err != nil {
		t.Fatal(err)
	}
	if _, err = m.RegisterState("pos", 3, nil); errors.Cause(err) != ErrStateExists {
		t.Fatalf("expected ErrStateExists, got %v", err)
	}
	if _, err = m.RegisterState("vel", 3, []float64{1}); err == nil {
		t.Fatal("expected an error for a wrong initial size")
	}
	if _, err = m.StateObject("vel"); errors.Cause(err) != ErrStateNotFound {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	if m.Size() != 4 {
		t.Fatalf("size=%d", m.Size())
	}
	if !vectorsEqual(m.GetState(), []float64{1, 2, 3, 0.5}) {
		t.Fatalf("state=%+v", m.GetState())
	}
	m.SetState([]float64{4, 5, 6, 7})
	if !vectorsEqual(pos.State(), []float64{4, 5, 6}) {
		t.Fatalf("pos=%+v", pos.State())
	}
	theta, err := m.StateObject("theta")
	if err != nil {
		t.Fatal(err)
	}
	if theta.Scalar() != 7 || theta.Name() != "theta" {
		t.Fatal("theta not set")
	}
	// State returns a copy.
	pos.State()[0] = 100
	if pos.State()[0] != 4 {
		t.Fatal("State does not return a copy")
	}
	pos.SetDerivative([]float64{1, 1, 1})
	theta.SetDerivative([]float64{-1})
	if !vectorsEqual(m.Derivatives(), []float64{1, 1, 1, -1}) {
		t.Fatalf("derivatives=%+v", m.Derivatives())
	}
	assertPanic(t, func() {
		m.SetState([]float64{1})
	})
	assertPanic(t, func() {
		theta.SetState([]float64{1, 2})
	})
}

func TestStateManagerProperties(t *testing.T) {
	m := NewStateManager()
	if _, err := m.PropertyReference("com"); errors.Cause(err) != ErrStateNotFound {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	p := m.RegisterProperty("com", 3, 1)
	p.Set(1, 0, 2)
	if again := m.RegisterProperty("com", 3, 1); again != p {
		t.Fatal("registering an existing property should return it")
	}
	ref, err := m.PropertyReference("com")
	if err != nil {
		t.Fatal(err)
	}
	if ref.At(1, 0) != 2 {
		t.Fatal("property reference is not shared")
	}
}

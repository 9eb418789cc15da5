package sbdyn

import (
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// StateData is a named integrated state and its derivative.
type StateData struct {
	name  string
	state []float64
	deriv []float64
}

// Name returns the name this state was registered with.
func (s *StateData) Name() string {
	return s.name
}

// State returns a copy of the state.
func (s *StateData) State() []float64 {
	rtn := make([]float64, len(s.state))
	copy(rtn, s.state)
	return rtn
}

// Scalar returns the first component of the state, meant for scalar states.
func (s *StateData) Scalar() float64 {
	return s.state[0]
}

// SetState sets the state, which must have the registered size.
func (s *StateData) SetState(v []float64) {
	if len(v) != len(s.state) {
		panic(errors.Errorf("state %s has size %d, got %d", s.name, len(s.state), len(v)))
	}
	copy(s.state, v)
}

// Derivative returns a copy of the state derivative.
func (s *StateData) Derivative() []float64 {
	rtn := make([]float64, len(s.deriv))
	copy(rtn, s.deriv)
	return rtn
}

// SetDerivative sets the state derivative.
func (s *StateData) SetDerivative(v []float64) {
	if len(v) != len(s.deriv) {
		panic(errors.Errorf("derivative of %s has size %d, got %d", s.name, len(s.deriv), len(v)))
	}
	copy(s.deriv, v)
}

// StateReader is a read-only view of a state owned by someone else.
type StateReader interface {
	Name() string
	State() []float64
}

// StateManager owns every integrated state and shared property of one vehicle.
type StateManager struct {
	states map[string]*StateData
	order  []*StateData
	props  map[string]*mat64.Dense
}

// NewStateManager returns an empty manager.
func NewStateManager() *StateManager {
	return &StateManager{states: make(map[string]*StateData), props: make(map[string]*mat64.Dense)}
}

// RegisterState registers a new state of the provided size and initial value.
func (m *StateManager) RegisterState(name string, size int, init []float64) (*StateData, error) {
	if _, exists := m.states[name]; exists {
		return nil, errors.Wrapf(ErrStateExists, "%s", name)
	}
	if init != nil && len(init) != size {
		return nil, errors.Errorf("initial value of %s has size %d instead of %d", name, len(init), size)
	}
	s := &StateData{name: name, state: make([]float64, size), deriv: make([]float64, size)}
	copy(s.state, init)
	m.states[name] = s
	m.order = append(m.order, s)
	return s, nil
}

// RegisterScalarState registers a single valued state.
func (m *StateManager) RegisterScalarState(name string, init float64) (*StateData, error) {
	return m.RegisterState(name, 1, []float64{init})
}

// StateObject returns the state registered under that name.
func (m *StateManager) StateObject(name string) (*StateData, error) {
	s, exists := m.states[name]
	if !exists {
		return nil, errors.Wrapf(ErrStateNotFound, "state %s", name)
	}
	return s, nil
}

// RegisterProperty creates a shared zero matrix property. Registering an existing property returns it.
func (m *StateManager) RegisterProperty(name string, rows, cols int) *mat64.Dense {
	if p, exists := m.props[name]; exists {
		return p
	}
	p := mat64.NewDense(rows, cols, nil)
	m.props[name] = p
	return p
}

// PropertyReference returns the property registered under that name.
func (m *StateManager) PropertyReference(name string) (*mat64.Dense, error) {
	p, exists := m.props[name]
	if !exists {
		return nil, errors.Wrapf(ErrStateNotFound, "property %s", name)
	}
	return p, nil
}

// Size returns the total number of components of all the states.
func (m *StateManager) Size() (n int) {
	for _, s := range m.order {
		n += len(s.state)
	}
	return
}

// GetState returns all the states concatenated in registration order.
func (m *StateManager) GetState() []float64 {
	flat := make([]float64, 0, m.Size())
	for _, s := range m.order {
		flat = append(flat, s.state...)
	}
	return flat
}

// SetState sets all the states from a vector in registration order.
func (m *StateManager) SetState(flat []float64) {
	if len(flat) != m.Size() {
		panic(errors.Errorf("state vector has size %d instead of %d", len(flat), m.Size()))
	}
	idx := 0
	for _, s := range m.order {
		copy(s.state, flat[idx:idx+len(s.state)])
		idx += len(s.state)
	}
}

// Derivatives returns all the derivatives concatenated in registration order.
func (m *StateManager) Derivatives() []float64 {
	flat := make([]float64, 0, m.Size())
	for _, s := range m.order {
		flat = append(flat, s.deriv...)
	}
	return flat
}

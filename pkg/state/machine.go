package state

import (
	"fmt"
	"sync"
)

// Observer is told about every state change exactly once.
// It runs with the machine locked and must not call back into it.
type Observer func(old, new State)

type Machine struct {
	mu       sync.Mutex
	current  State
	observer Observer
}

func NewMachine(observer Observer) *Machine {
	return &Machine{current: NotCreated, observer: observer}
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Transition moves to `to` if the table allows it from the current state.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidState, m.current, to)
	}
	m.set(to)
	return nil
}

// TransitionFrom moves from -> to only if the machine is currently in from.
func (m *Machine) TransitionFrom(from, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != from || !CanTransition(from, to) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidState, m.current, to)
	}
	m.set(to)
	return nil
}

// Force moves to `to` from any created state, bypassing the table.
// Revocation and device loss use it to stop a sending or receiving engine.
// It reports whether the state changed.
func (m *Machine) Force(to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == NotCreated || m.current == to {
		return false
	}
	m.set(to)
	return true
}

func (m *Machine) set(to State) {
	old := m.current
	m.current = to
	if m.observer != nil {
		m.observer(old, to)
	}
}

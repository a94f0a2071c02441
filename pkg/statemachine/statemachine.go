// Package statemachine provides a small, thread-safe transition-table state
// machine over an enumerated state type. Transitions outside the declared
// table are programming errors, which callers surface as such rather than as
// user-facing validation failures.
package statemachine

import (
	"fmt"
	"sync"
)

// Machine tracks the current state and validates transitions against a
// declared table.
type Machine[S comparable] struct {
	mu          sync.RWMutex
	current     S
	transitions map[S][]S
}

// New creates a machine in the initial state with the given transition table.
// A state missing from the table is terminal.
func New[S comparable](initial S, transitions map[S][]S) *Machine[S] {
	return &Machine[S]{current: initial, transitions: transitions}
}

// Current returns the current state.
func (m *Machine[S]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in the given state.
func (m *Machine[S]) Is(state S) bool {
	return m.Current() == state
}

// CanTransition reports whether moving to the given state is declared legal
// from the current one. Staying in place is always legal.
func (m *Machine[S]) CanTransition(to S) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.canTransitionLocked(to)
}

func (m *Machine[S]) canTransitionLocked(to S) bool {
	if to == m.current {
		return true
	}
	for _, next := range m.transitions[m.current] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the machine to the given state, failing when the table
// does not declare the edge.
func (m *Machine[S]) Transition(to S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.canTransitionLocked(to) {
		return fmt.Errorf("statemachine: invalid transition %v -> %v", m.current, to)
	}
	m.current = to
	return nil
}

// Force sets the state without consulting the table. Reserved for resets.
func (m *Machine[S]) Force(to S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = to
}

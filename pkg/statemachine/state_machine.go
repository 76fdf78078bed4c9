// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned when a transition is not registered.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionValidator validates whether a state transition is allowed.
type TransitionValidator[T comparable] func(from, to T) error

// StateMachine is a transition table over comparable states.
// It holds no current state, so one table is shared by every record of a kind.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	// from state -> list of valid next states
	validTransitions map[T][]T
	states           []T
	validators       []TransitionValidator[T]
}

// New creates a new StateMachine instance.
func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		validTransitions: make(map[T][]T),
	}
}

// Allow registers the valid transitions from a source state.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.track(from)
	for _, target := range to {
		sm.track(target)
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

// AddValidator adds a validator that runs on every Validate call.
func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

// CanTransition checks if a transition from one state to another is registered.
func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// Validate returns ErrInvalidTransition for unregistered transitions and the first validator error otherwise.
func (sm *StateMachine[T]) Validate(from, to T) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !slices.Contains(sm.validTransitions[from], to) {
		return fmt.Errorf("%w: %v → %v", ErrInvalidTransition, from, to)
	}
	for _, validator := range sm.validators {
		if err := validator(from, to); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// IsTerminal reports whether no transition leaves state.
func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.validTransitions[state]) == 0
}

// GetValidNextStates returns all valid next states from the given state.
func (sm *StateMachine[T]) GetValidNextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.validTransitions[from])
}

// GetAllStates returns every state in registration order.
func (sm *StateMachine[T]) GetAllStates() []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.states)
}

// ToDot exports the StateMachine as a Graphviz DOT format string.
func (sm *StateMachine[T]) ToDot(name string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	dot := fmt.Sprintf("digraph %s {\n", name)
	dot += "  rankdir=LR;\n"
	dot += "  node [shape=circle];\n"
	for _, from := range sm.states {
		for _, to := range sm.validTransitions[from] {
			dot += fmt.Sprintf("  \"%v\" -> \"%v\";\n", from, to)
		}
	}
	dot += "}\n"
	return dot
}

func (sm *StateMachine[T]) track(state T) {
	if !slices.Contains(sm.states, state) {
		sm.states = append(sm.states, state)
	}
}

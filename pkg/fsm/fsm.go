// Package fsm provides table-driven finite state machines.
//
// A Table maps transition names to their allowed arcs (from-state to
// to-state). Transitions are applied by name and validated against the
// table; there is no automatic transition logic.
package fsm

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a transition name is undefined or
// not allowed from the current state.
var ErrIllegalTransition = errors.New("illegal state transition")

// Table holds the transition arcs of a state machine, keyed by transition
// name. For each name, the inner map lists the allowed from-states and the
// state each one leads to.
type Table[S comparable] map[string]map[S]S

// Can reports whether the named transition is allowed from the given state.
func (t Table[S]) Can(from S, name string) bool {
	arcs, ok := t[name]
	if !ok {
		return false
	}
	_, ok = arcs[from]
	return ok
}

// Apply resolves the named transition from the given state. It returns the
// next state, or ErrIllegalTransition (wrapped with the transition name and
// current state) if the name is undefined or not allowed. The caller's state
// is never changed on failure.
func (t Table[S]) Apply(from S, name string) (S, error) {
	arcs, ok := t[name]
	if !ok {
		var zero S
		return zero, &TransitionError{Name: name, From: fmt.Sprintf("%v", from)}
	}
	next, ok := arcs[from]
	if !ok {
		var zero S
		return zero, &TransitionError{Name: name, From: fmt.Sprintf("%v", from)}
	}
	return next, nil
}

// Transitions returns the set of transition names allowed from the given
// state.
func (t Table[S]) Transitions(from S) []string {
	var names []string
	for name, arcs := range t {
		if _, ok := arcs[from]; ok {
			names = append(names, name)
		}
	}
	return names
}

// TransitionError reports a rejected transition.
type TransitionError struct {
	Name string
	From string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %q not allowed from state %q", e.Name, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

package domain

import (
	"github.com/mohae/deepcopy"
)

// State is the single channel of communication between nodes, the router and
// the loop controller. No schema is enforced.
type State map[string]any

// NewState returns an empty state.
func NewState() State {
	return make(State)
}

// Clone returns a deep copy of the state. Nested maps and slices are copied,
// so the clone can be mutated without affecting the original.
func (s State) Clone() State {
	if s == nil {
		return NewState()
	}
	cp, ok := deepcopy.Copy(map[string]any(s)).(map[string]any)
	if !ok || cp == nil {
		return NewState()
	}
	return State(cp)
}

// Bool reports whether key holds the boolean true.
func (s State) Bool(key string) bool {
	v, ok := s[key].(bool)
	return ok && v
}

// String returns the value of key if it is a non-empty string.
func (s State) String(key string) (string, bool) {
	v, ok := s[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Pop removes key from the state and returns its previous value.
func (s State) Pop(key string) (any, bool) {
	v, ok := s[key]
	if ok {
		delete(s, key)
	}
	return v, ok
}

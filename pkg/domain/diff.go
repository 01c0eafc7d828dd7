package domain

import (
	"reflect"
	"sort"
)

// StateDiff holds the keys that changed between two states.
// For deletions, the key is present with a nil value.
type StateDiff map[string]any

// Diff calculates the difference between oldState and newState.
// If oldState is nil, every key of newState is reported.
// It returns nil when nothing changed.
func Diff(oldState, newState State) StateDiff {
	delta := make(StateDiff)

	for k, newVal := range newState {
		oldVal, exists := oldState[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range oldState {
		if _, exists := newState[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// Keys returns the changed keys in lexical order.
func (d StateDiff) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

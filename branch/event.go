// Package branch provides access to event columns by name.
//
// Tree reads events from a ROOT file; Event holds one event in memory and is
// mostly useful for tests and synthetic inputs. Both implement
// quarry.Branches.
package branch

import (
	"fmt"
	"sync"
)

// Event is a single in-memory event. Values are scalars or slices of any
// numeric or boolean type, possibly behind pointers.
type Event struct {
	mu     sync.Mutex
	values map[string]any
}

// NewEvent creates an empty event
func NewEvent() *Event {
	return &Event{values: map[string]any{}}
}

// Set stores a branch value and returns the event for chaining
func (e *Event) Set(name string, value any) *Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[name] = value
	return e
}

func (e *Event) get(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[name]
	if !ok {
		panic(fmt.Errorf("branch %s does not exist", name))
	}
	return v
}

// HasBranch implements quarry.Branches
func (e *Event) HasBranch(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.values[name]
	return ok
}

// Value implements quarry.Branches
func (e *Event) Value(name string) float64 {
	return asFloat(name, scalar(name, e.get(name)))
}

// Int implements quarry.Branches
func (e *Event) Int(name string) int64 {
	return asInt(name, scalar(name, e.get(name)))
}

// Uint implements quarry.Branches
func (e *Event) Uint(name string) uint64 {
	return asUint(name, scalar(name, e.get(name)))
}

// Len implements quarry.Branches
func (e *Event) Len(name string) int {
	return array(name, e.get(name)).Len()
}

// At implements quarry.Branches
func (e *Event) At(name string, i int) float64 {
	return asFloat(name, element(name, e.get(name), i))
}

// IntAt implements quarry.Branches
func (e *Event) IntAt(name string, i int) int64 {
	return asInt(name, element(name, e.get(name), i))
}

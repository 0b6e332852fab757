package quarry

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// RawIndex is the position of an object in the event's flat per-kind array
// as stored by the source data. It is stable for the lifetime of one event.
type RawIndex uint16

// Branches exposes the columns of the current event by name.
//
// Implementations panic if the requested branch does not exist or has the
// wrong shape: a missing branch is a misconfiguration, not an event-level
// condition.
type Branches interface {
	Value(name string) float64      // scalar branch
	Int(name string) int64          // scalar integer branch
	Uint(name string) uint64        // scalar unsigned branch
	Len(name string) int            // length of an array branch
	At(name string, i int) float64  // element of an array branch
	IntAt(name string, i int) int64 // element of an integer array branch
	HasBranch(name string) bool     // whether the branch is available
}

const noTriggerObject = -1

// Collection is an ordered set of raw indices of one object kind within one
// event, plus systematic variation arrays indexed by raw index.
//
// A Collection is not safe for concurrent mutation. Selections never mutate
// their receiver.
type Collection struct {
	branches   Branches
	rawIndices []RawIndex
	trigObj    int16

	// Variation arrays are shared between a collection and its skims and
	// are never modified in place; SetSystematics replaces them.
	systNames []string
	syst      [][]float64
}

// New creates a collection holding the leading size objects of an event
func New(branches Branches, size int) *Collection {
	c := &Collection{branches: branches, trigObj: noTriggerObject}
	c.SetLeadNConstituents(size)
	return c
}

// NewFromIndices creates a collection with explicit membership
func NewFromIndices(branches Branches, indices []RawIndex) *Collection {
	return &Collection{
		branches:   branches,
		rawIndices: slices.Clone(indices),
		trigObj:    noTriggerObject,
	}
}

// Clone returns a copy of the collection sharing the same Branches.
//
// The copy does not inherit the trigger object index.
func (c *Collection) Clone() *Collection {
	return &Collection{
		branches:   c.branches,
		rawIndices: slices.Clone(c.rawIndices),
		trigObj:    noTriggerObject,
		systNames:  c.systNames,
		syst:       c.syst,
	}
}

// derive returns an empty collection inheriting everything except
// membership
func (c *Collection) derive() *Collection {
	return &Collection{
		branches:   c.branches,
		rawIndices: make([]RawIndex, 0, len(c.rawIndices)),
		trigObj:    c.trigObj,
		systNames:  c.systNames,
		syst:       c.syst,
	}
}

// Branches returns the event columns the collection reads from
func (c *Collection) Branches() Branches {
	return c.branches
}

// Size returns the number of constituents
func (c *Collection) Size() int {
	return len(c.rawIndices)
}

// RawIndices returns a copy of the constituents' raw indices in collection
// order
func (c *Collection) RawIndices() []RawIndex {
	return slices.Clone(c.rawIndices)
}

// RawIndexAt returns the raw index of the constituent at position pos
func (c *Collection) RawIndexAt(pos int) RawIndex {
	return c.rawIndices[pos]
}

// SetRawIndices replaces the membership
func (c *Collection) SetRawIndices(indices []RawIndex) {
	c.rawIndices = slices.Clone(indices)
}

// SetLeadNConstituents replaces the membership with raw indices 0..n-1
func (c *Collection) SetLeadNConstituents(n int) {
	c.rawIndices = make([]RawIndex, n)
	for i := range c.rawIndices {
		c.rawIndices[i] = RawIndex(i)
	}
}

// Clear removes all constituents
func (c *Collection) Clear() {
	c.rawIndices = c.rawIndices[:0]
}

// Append adds a constituent at the end
func (c *Collection) Append(raw RawIndex) {
	c.rawIndices = append(c.rawIndices, raw)
}

// RemoveAt removes the constituent at position pos
func (c *Collection) RemoveAt(pos int) {
	c.rawIndices = slices.Delete(c.rawIndices, pos, pos+1)
}

// Remove removes the constituent the object refers to, if present
func (c *Collection) Remove(o Object) {
	if pos := slices.Index(c.rawIndices, o.RawIndex()); pos >= 0 {
		c.RemoveAt(pos)
	}
}

// SetTriggerObjectIndex sets the trigger leg objects of this collection are
// checked against
func (c *Collection) SetTriggerObjectIndex(i int16) {
	c.trigObj = i
}

// TriggerObjectIndex returns the trigger leg and whether it is set
func (c *Collection) TriggerObjectIndex() (int16, bool) {
	return c.trigObj, c.trigObj >= 0
}

// Has tells whether the object is a constituent of the collection
func Has(c *Collection, o Object) bool {
	return slices.Contains(c.rawIndices, o.RawIndex())
}

// HasHowMany returns the number of raw indices the two collections have in
// common.
//
// Both index sets are sorted locally, so the result does not depend on the
// order of either collection.
func HasHowMany(c, other *Collection) int {
	a := sortedIndices(c.rawIndices)
	b := sortedIndices(other.rawIndices)
	var n int
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}

func sortedIndices(indices []RawIndex) []RawIndex {
	s := slices.Clone(indices)
	slices.Sort(s)
	return s
}

// SetSystematics replaces the systematic variation arrays.
//
// Every array must have the same length, at least the largest raw index of
// the collection plus one.
func (c *Collection) SetSystematics(names []string, arrays [][]float64) {
	if len(names) != len(arrays) {
		panic(fmt.Errorf("%d systematic names for %d arrays", len(names), len(arrays)))
	}
	need := 0
	for _, raw := range c.rawIndices {
		if int(raw)+1 > need {
			need = int(raw) + 1
		}
	}
	for i, a := range arrays {
		if len(a) != len(arrays[0]) {
			panic(fmt.Errorf("systematic %s has %d values, expected %d", names[i], len(a), len(arrays[0])))
		}
		if len(a) < need {
			panic(fmt.Errorf("systematic %s has %d values, collection needs %d", names[i], len(a), need))
		}
	}
	c.systNames = slices.Clone(names)
	c.syst = slices.Clone(arrays)
}

// SystematicNames returns the names of the stored variations
func (c *Collection) SystematicNames() []string {
	return slices.Clone(c.systNames)
}

// Systematics returns the stored variation arrays in the order of
// SystematicNames. The arrays must not be modified.
func (c *Collection) Systematics() [][]float64 {
	return slices.Clone(c.syst)
}

// HasSystematic tells whether a variation with the given name is stored
func (c *Collection) HasSystematic(name string) bool {
	return slices.Contains(c.systNames, name)
}

// SystematicValue returns the value of the named variation for the object
// with the given raw index.
//
// An unknown name is a misconfiguration and panics.
func (c *Collection) SystematicValue(raw RawIndex, name string) float64 {
	i := slices.Index(c.systNames, name)
	if i < 0 {
		panic(fmt.Errorf("systematic %q does not exist in the stored variations: [%s]", name, strings.Join(c.systNames, ", ")))
	}
	return c.syst[i][raw]
}

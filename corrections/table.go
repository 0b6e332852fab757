// Package corrections contains immutable binned correction tables.
//
// Tables are built once (from the built-in defaults, a YAML file, or
// hard-coded per-period values) and passed explicitly to whatever needs
// them. They are safe for concurrent use.
package corrections

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/exp/slices"
)

// Table is a one-dimensional binned lookup table
type Table struct {
	edges []float64
	hist  *hbook.H1D
}

// NewTable creates a table with len(edges)-1 bins. Edges must be strictly
// increasing.
func NewTable(edges, contents []float64) (*Table, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("table needs at least 2 edges, got %d", len(edges))
	}
	if len(contents) != len(edges)-1 {
		return nil, fmt.Errorf("table with %d edges needs %d values, got %d", len(edges), len(edges)-1, len(contents))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("table edges are not strictly increasing at %d: %v", i, edges)
		}
	}

	h := hbook.NewH1DFromEdges(edges)
	for i, v := range contents {
		h.Fill((edges[i]+edges[i+1])/2, v)
	}
	return &Table{edges: slices.Clone(edges), hist: h}, nil
}

// Len returns the number of bins
func (t *Table) Len() int {
	return len(t.edges) - 1
}

// Bin returns the bin x falls into: -1 below the first edge, Len() at or
// above the last one
func (t *Table) Bin(x float64) int {
	if x < t.edges[0] {
		return -1
	}
	for i := 1; i < len(t.edges); i++ {
		if x < t.edges[i] {
			return i - 1
		}
	}
	return t.Len()
}

// Value returns the content of bin i
func (t *Table) Value(i int) float64 {
	return t.hist.Value(i)
}

// Lookup returns the content of the bin x falls into, 0 outside the table
func (t *Table) Lookup(x float64) float64 {
	i := t.Bin(x)
	if i < 0 || i >= t.Len() {
		return 0
	}
	return t.Value(i)
}

// LookupClamped is like Lookup, but values outside the table get the
// content of the nearest edge bin
func (t *Table) LookupClamped(x float64) float64 {
	i := t.Bin(x)
	switch {
	case i < 0:
		i = 0
	case i >= t.Len():
		i = t.Len() - 1
	}
	return t.Value(i)
}

// Package objects contains the concrete physics object kinds.
//
// Each kind is a view of one object within a quarry.Collection, reading its
// properties from NanoAOD-style branches named <Prefix>_<field>. The New*
// constructors have the quarry.Kind signature and are passed to the
// collection operations:
//
//	jets = quarry.SkimByMinPt(jets, objects.NewJet, 30)
package objects

import (
	"fmt"
	"math"

	"github.com/ridge/quarry"
)

// view is the part common to all kinds: identity, kinematic overrides and
// branch access
type view struct {
	c      *quarry.Collection
	raw    quarry.RawIndex
	prefix string

	pt, eta, phi          float64
	hasPt, hasEta, hasPhi bool
}

func newView(c *quarry.Collection, raw quarry.RawIndex, prefix string) view {
	return view{c: c, raw: raw, prefix: prefix}
}

func (v *view) branch(field string) string {
	return v.prefix + "_" + field
}

func (v *view) at(field string) float64 {
	return v.c.Branches().At(v.branch(field), int(v.raw))
}

func (v *view) intAt(field string) int64 {
	return v.c.Branches().IntAt(v.branch(field), int(v.raw))
}

func (v *view) has(field string) bool {
	return v.c.Branches().HasBranch(v.branch(field))
}

// Collection returns the collection the object belongs to
func (v *view) Collection() *quarry.Collection {
	return v.c
}

// RawIndex implements quarry.Object
func (v *view) RawIndex() quarry.RawIndex {
	return v.raw
}

// Pt implements quarry.Object
func (v *view) Pt() float64 {
	if v.hasPt {
		return v.pt
	}
	return v.at("pt")
}

// Eta implements quarry.Object
func (v *view) Eta() float64 {
	if v.hasEta {
		return v.eta
	}
	return v.at("eta")
}

// Phi implements quarry.Object
func (v *view) Phi() float64 {
	if v.hasPhi {
		return v.phi
	}
	return v.at("phi")
}

// SetPt implements quarry.Mutable
func (v *view) SetPt(pt float64) {
	v.pt, v.hasPt = pt, true
}

// SetEta implements quarry.Mutable
func (v *view) SetEta(eta float64) {
	v.eta, v.hasEta = eta, true
}

// SetPhi implements quarry.Mutable
func (v *view) SetPhi(phi float64) {
	v.phi, v.hasPhi = phi, true
}

func (v *view) rho() float64 {
	if v.c.Branches().HasBranch(rhoBranch) {
		return v.c.Branches().Value(rhoBranch)
	}
	return 0
}

func (v *view) format(name string) string {
	return fmt.Sprintf("%s: idx = %d, Pt = %g, Eta = %g, Phi = %g", name, v.raw, v.Pt(), v.Eta(), v.Phi())
}

const rhoBranch = "fixedGridRhoFastjetAll"

func bit(value int64, n uint) bool {
	return (value>>n)&1 == 1
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// binned returns the value of the bin of |eta| among upper edges, or the last
// value beyond the last edge
func binned(eta float64, edges, values []float64) float64 {
	a := math.Abs(eta)
	for i, edge := range edges {
		if a < edge {
			return values[i]
		}
	}
	return values[len(values)-1]
}

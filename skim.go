package quarry

import (
	"math"
)

// noMatchDR is the minimum distance reported when there is nothing to
// compare with
const noMatchDR = 999.0

// duplicateDR is the separation below which two objects are the same
const duplicateDR = 1e-4

// Skim returns a new collection holding the constituents satisfying pred,
// in their original order.
//
// The result inherits the systematic variations and the trigger object index
// of the source.
func Skim[O Object](c *Collection, kind Kind[O], pred func(o O) bool) *Collection {
	res := c.derive()
	for _, raw := range c.rawIndices {
		if pred(kind(c, raw)) {
			res.rawIndices = append(res.rawIndices, raw)
		}
	}
	return res
}

// SkimByID keeps constituents passing the identity classification id
func SkimByID[O Object](c *Collection, kind Kind[O], id ID) *Collection {
	return Skim(c, kind, func(o O) bool {
		return o.PassUserID(id)
	})
}

// SkimByMinPt keeps constituents with Pt() >= minPt
func SkimByMinPt[O Object](c *Collection, kind Kind[O], minPt float64) *Collection {
	return Skim(c, kind, func(o O) bool {
		return o.Pt() >= minPt
	})
}

// SkimByMinPtHeep keeps constituents with PtHeep() >= minPt
func SkimByMinPtHeep[O HeepObject](c *Collection, kind Kind[O], minPt float64) *Collection {
	return Skim(c, kind, func(o O) bool {
		return o.PtHeep() >= minPt
	})
}

// SkimByEtaRange keeps constituents with minEta <= Eta() <= maxEta
func SkimByEtaRange[O Object](c *Collection, kind Kind[O], minEta, maxEta float64) *Collection {
	return Skim(c, kind, func(o O) bool {
		eta := o.Eta()
		return eta >= minEta && eta <= maxEta
	})
}

// SkimByMaxAbsEta keeps constituents with |Eta()| <= maxAbsEta
func SkimByMaxAbsEta[O Object](c *Collection, kind Kind[O], maxAbsEta float64) *Collection {
	return SkimByEtaRange(c, kind, -maxAbsEta, maxAbsEta)
}

// MinDeltaR returns the smallest angular separation between o and the
// constituents of other, or 999 if other is empty
func MinDeltaR[O Object](o Object, other *Collection, otherKind Kind[O]) float64 {
	minDR := noMatchDR
	for _, raw := range other.rawIndices {
		if dr := DeltaR(o, otherKind(other, raw)); dr < minDR {
			minDR = dr
		}
	}
	return minDR
}

// SkimByVetoDRMatch keeps constituents that are at least minDR away from
// every object in other.
//
// Use this to remove overlaps between collections.
func SkimByVetoDRMatch[O1, O2 Object](c *Collection, kind Kind[O1], other *Collection, otherKind Kind[O2], minDR float64) *Collection {
	return Skim(c, kind, func(o O1) bool {
		return MinDeltaR(o, other, otherKind) >= minDR
	})
}

// SkimByVetoDRMatchObject keeps constituents that are at least minDR away
// from a single reference object
func SkimByVetoDRMatchObject[O Object](c *Collection, kind Kind[O], ref Object, minDR float64) *Collection {
	return Skim(c, kind, func(o O) bool {
		return DeltaR(o, ref) >= minDR
	})
}

// SkimByRequireDRMatch keeps constituents that are within maxDR of some
// object in other.
//
// Use this to match one group of objects to another.
func SkimByRequireDRMatch[O1, O2 Object](c *Collection, kind Kind[O1], other *Collection, otherKind Kind[O2], maxDR float64) *Collection {
	return Skim(c, kind, func(o O1) bool {
		return MinDeltaR(o, other, otherKind) <= maxDR
	})
}

// ClosestInDR returns the constituent closest to ref. The first constituent
// wins ties. The second return value is false if the collection is empty.
func ClosestInDR[O Object](c *Collection, kind Kind[O], ref Object) (O, bool) {
	var closest O
	found := false
	minDR := noMatchDR
	for _, raw := range c.rawIndices {
		o := kind(c, raw)
		if dr := DeltaR(o, ref); dr < minDR {
			minDR = dr
			closest = o
			found = true
		}
	}
	return closest, found
}

// RemoveDuplicates drops every constituent closer than 1e-4 in ΔR to an
// earlier constituent. The first occurrence wins.
func RemoveDuplicates[O Object](c *Collection, kind Kind[O]) *Collection {
	res := c.derive()
	objs := Constituents(c, kind)
	for i, o := range objs {
		duplicate := false
		for _, prev := range objs[:i] {
			if DeltaR(o, prev) < duplicateDR {
				duplicate = true
				break
			}
		}
		if !duplicate {
			res.rawIndices = append(res.rawIndices, o.RawIndex())
		}
	}
	return res
}

// MatchByDRAndDPt finds the object of other closest in ΔR to o among those
// with ΔR < maxDR and |ΔPt| < maxDPt. The first candidate wins ties.
func MatchByDRAndDPt[O Object](o Object, other *Collection, otherKind Kind[O], maxDR, maxDPt float64) (O, bool) {
	var matched O
	found := false
	minDR := maxDR
	for _, raw := range other.rawIndices {
		candidate := otherKind(other, raw)
		dr := DeltaR(o, candidate)
		if dr >= minDR || math.Abs(o.Pt()-candidate.Pt()) >= maxDPt {
			continue
		}
		minDR = dr
		matched = candidate
		found = true
	}
	return matched, found
}

package quarry

import (
	"go-hep.org/x/hep/fmom"
)

// Object is a view of one physics object: a collection and a raw index
type Object interface {
	Name() string
	RawIndex() RawIndex
	Pt() float64
	Eta() float64
	Phi() float64
	Mass() float64
	PassUserID(id ID) bool
}

// Kind builds object views of one concrete type.
//
// Kind functions are the only way operations in this package instantiate
// objects, so a single Collection implementation serves every object kind.
type Kind[O Object] func(c *Collection, raw RawIndex) O

// HeepObject is an object with an alternate transverse momentum definition
// used by high-energy electron selections
type HeepObject interface {
	Object
	PtHeep() float64
}

// Mutable is an object view whose kinematics can be overridden. Overrides
// are local to the view.
type Mutable interface {
	Object
	SetPt(pt float64)
	SetEta(eta float64)
	SetPhi(phi float64)
}

// Scalable is an object with a relative energy scale uncertainty
type Scalable interface {
	Mutable
	EnergyScaleFactor() float64
}

// Resolution provides relative transverse momentum resolutions
type Resolution interface {
	Resolution(pt, eta, rho float64) float64
}

// ScaleFactors provides resolution data/simulation scale factors
type ScaleFactors interface {
	ScaleFactor(eta float64, variation string) float64
}

// Smearable is an object whose energy resolution can be corrected
type Smearable interface {
	Mutable
	EnergyRes() float64                                                 // intrinsic relative resolution
	EnergyResScaleFactor() float64                                      // intrinsic resolution scale factor
	EnergyResFrom(r Resolution) float64                                 // relative resolution from a correction
	EnergyResScaleFactorFrom(sf ScaleFactors, variation string) float64 // scale factor from a correction
}

// RandomEngine supplies Gaussian samples
type RandomEngine interface {
	Gaus(mean, sigma float64) float64
}

// P4 returns the four-momentum of an object at the given mass
func P4(o Object, mass float64) fmom.PtEtaPhiM {
	return fmom.NewPtEtaPhiM(o.Pt(), o.Eta(), o.Phi(), mass)
}

// DeltaR returns the angular separation of two objects
func DeltaR(a, b Object) float64 {
	pa := P4(a, 0)
	pb := P4(b, 0)
	return fmom.DeltaR(&pa, &pb)
}

// Constituent returns a view of the constituent at position pos
func Constituent[O Object](c *Collection, kind Kind[O], pos int) O {
	return kind(c, c.rawIndices[pos])
}

// Constituents returns views of all constituents in collection order
func Constituents[O Object](c *Collection, kind Kind[O]) []O {
	res := make([]O, 0, len(c.rawIndices))
	for _, raw := range c.rawIndices {
		res = append(res, kind(c, raw))
	}
	return res
}

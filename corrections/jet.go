package corrections

import (
	"fmt"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// minResolutionPt is the pt below which the resolution parameterization is
// frozen
const minResolutionPt = 15

// PtResolution is a relative transverse momentum resolution parameterized
// in bins of |eta|:
//
//	σ/pt = sqrt(sign(N)·N²/pt² + S²/pt + C²),  N² = N0² + (NRho·rho)²
//
// It implements quarry.Resolution.
type PtResolution struct {
	n, s, c *Table
	nRho    float64
}

// Resolution returns σ/pt
func (r *PtResolution) Resolution(pt, eta, rho float64) float64 {
	pt = math.Max(pt, minResolutionPt)
	a := math.Abs(eta)
	n0 := r.n.LookupClamped(a)
	s := r.s.LookupClamped(a)
	c := r.c.LookupClamped(a)

	noise := n0*math.Abs(n0) + (r.nRho*rho)*(r.nRho*rho)
	res2 := noise/(pt*pt) + s*s/pt + c*c
	if res2 <= 0 {
		return 0
	}
	return math.Sqrt(res2)
}

// JERScaleFactors are data/simulation jet energy resolution ratios in bins
// of |eta|. It implements quarry.ScaleFactors.
type JERScaleFactors struct {
	byVariation map[string]*Table
}

// JER scale factor variations
const (
	Nominal = "nom"
	Up      = "up"
	Down    = "down"
)

// ScaleFactor returns the scale factor for the variation nom, up or down.
// Any other variation is a misconfiguration and panics.
func (j *JERScaleFactors) ScaleFactor(eta float64, variation string) float64 {
	t, ok := j.byVariation[variation]
	if !ok {
		panic(fmt.Errorf("unknown JER scale factor variation %q", variation))
	}
	return t.LookupClamped(math.Abs(eta))
}

// JESUncertainty holds relative jet energy scale uncertainties per source in
// bins of eta
type JESUncertainty struct {
	sources map[string]*Table
}

// Sources returns the uncertainty source names, sorted
func (j *JESUncertainty) Sources() []string {
	names := maps.Keys(j.sources)
	slices.Sort(names)
	return names
}

// Has tells whether a source is known
func (j *JESUncertainty) Has(source string) bool {
	_, ok := j.sources[source]
	return ok
}

// Uncertainty returns the relative uncertainty of a source. An unknown source
// is a misconfiguration and panics.
func (j *JESUncertainty) Uncertainty(source string, eta float64) float64 {
	t, ok := j.sources[source]
	if !ok {
		panic(fmt.Errorf("unknown JES uncertainty source %q, expected one of %v", source, j.Sources()))
	}
	return t.LookupClamped(eta)
}

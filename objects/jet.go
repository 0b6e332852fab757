package objects

import (
	"math"

	"github.com/ridge/quarry"
)

// Jet is a reconstructed particle-flow jet
type Jet struct {
	view
}

// NewJet is the quarry.Kind of jets
func NewJet(c *quarry.Collection, raw quarry.RawIndex) *Jet {
	return &Jet{view: newView(c, raw, "Jet")}
}

// jetId bits
const (
	jetIDTight        = 1
	jetIDTightLepVeto = 2
)

// DeepJet b-tagging working points
const (
	bTagLoose  = 0.0490
	bTagMedium = 0.2783
)

const jetScaleUncertainty = 0.02

// Intrinsic resolution parameters and scale factors in bins of |eta|
var (
	jetResEdges = []float64{1.3, 2.5, 3.0}
	jetResN     = []float64{3.0, 4.0, 4.5, 3.5}
	jetResS     = []float64{1.0, 1.1, 0.7, 0.6}
	jetResC     = []float64{0.04, 0.05, 0.10, 0.08}

	jetSFEdges = []float64{0.5, 1.1, 1.7, 2.3, 3.0}
	jetSF      = []float64{1.15, 1.13, 1.12, 1.14, 1.35, 1.10}
)

// Name implements quarry.Object
func (j *Jet) Name() string { return "PFJet" }

// Mass implements quarry.Object
func (j *Jet) Mass() float64 { return j.at("mass") }

// JetID returns the jet ID bit field
func (j *Jet) JetID() int64 { return j.intAt("jetId") }

// BTag returns the DeepJet b-tagging discriminant
func (j *Jet) BTag() float64 { return j.at("btagDeepFlavB") }

// RawFactor returns 1 - raw pt / corrected pt
func (j *Jet) RawFactor() float64 { return j.at("rawFactor") }

// Area returns the jet catchment area
func (j *Jet) Area() float64 { return j.at("area") }

// GenJetIndex returns the raw index of the matched generator jet, -1 if none
func (j *Jet) GenJetIndex() int { return int(j.intAt("genJetIdx")) }

// PartonFlavour returns the flavour of the matched parton
func (j *Jet) PartonFlavour() int { return int(j.intAt("partonFlavour")) }

// MuonSubtrFactor returns 1 - (raw pt without muons) / raw pt
func (j *Jet) MuonSubtrFactor() float64 { return j.at("muonSubtrFactor") }

// NeEmEF returns the neutral electromagnetic energy fraction
func (j *Jet) NeEmEF() float64 { return j.at("neEmEF") }

// ChEmEF returns the charged electromagnetic energy fraction
func (j *Jet) ChEmEF() float64 { return j.at("chEmEF") }

// PtVariation returns the transverse momentum under a jet systematic
// variation stored on the collection
func (j *Jet) PtVariation(variation string) float64 {
	return j.c.SystematicValue(j.raw, "Pt_"+variation)
}

// MassVariation returns the mass under a jet systematic variation stored on
// the collection
func (j *Jet) MassVariation(variation string) float64 {
	return j.c.SystematicValue(j.raw, "mass_"+variation)
}

// PassUserID implements quarry.Object
func (j *Jet) PassUserID(id quarry.ID) bool {
	switch id {
	case quarry.JetTight:
		return bit(j.JetID(), jetIDTight)
	case quarry.JetTightLepVeto:
		return bit(j.JetID(), jetIDTightLepVeto)
	case quarry.JetBTagLoose:
		return j.BTag() > bTagLoose
	case quarry.JetBTagMedium:
		return j.BTag() > bTagMedium
	}
	return false
}

// EnergyScaleFactor implements quarry.Scalable
func (j *Jet) EnergyScaleFactor() float64 { return jetScaleUncertainty }

// EnergyRes implements quarry.Smearable
func (j *Jet) EnergyRes() float64 {
	pt := math.Max(j.Pt(), 15)
	eta := j.Eta()
	n := binned(eta, jetResEdges, jetResN)
	s := binned(eta, jetResEdges, jetResS)
	c := binned(eta, jetResEdges, jetResC)
	return math.Sqrt(n*n/(pt*pt) + s*s/pt + c*c)
}

// EnergyResScaleFactor implements quarry.Smearable
func (j *Jet) EnergyResScaleFactor() float64 {
	return binned(j.Eta(), jetSFEdges, jetSF)
}

// EnergyResFrom implements quarry.Smearable
func (j *Jet) EnergyResFrom(r quarry.Resolution) float64 {
	return r.Resolution(j.Pt(), j.Eta(), j.rho())
}

// EnergyResScaleFactorFrom implements quarry.Smearable
func (j *Jet) EnergyResScaleFactorFrom(sf quarry.ScaleFactors, variation string) float64 {
	return sf.ScaleFactor(j.Eta(), variation)
}

func (j *Jet) String() string { return j.format(j.Name()) }

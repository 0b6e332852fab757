package objects

import (
	"github.com/ridge/quarry"
)

// Muon is a reconstructed muon
type Muon struct {
	view
}

// NewMuon is the quarry.Kind of muons
func NewMuon(c *quarry.Collection, raw quarry.RawIndex) *Muon {
	return &Muon{view: newView(c, raw, "Muon")}
}

const muonMass = 0.1056583755

// Muon momentum scale uncertainty: a flat part plus a part growing with
// momentum, per TeV
const (
	muonScaleFlat   = 0.002
	muonScalePerTeV = 0.05
)

// Muon high-pT ID values
const (
	highPtTracker = 1
	highPtGlobal  = 2
)

// Name implements quarry.Object
func (m *Muon) Name() string { return "Muon" }

// Mass implements quarry.Object
func (m *Muon) Mass() float64 {
	if m.has("mass") {
		return m.at("mass")
	}
	return muonMass
}

// Charge returns the electric charge
func (m *Muon) Charge() int { return int(m.intAt("charge")) }

// PassUserID implements quarry.Object
func (m *Muon) PassUserID(id quarry.ID) bool {
	switch id {
	case quarry.MuonLoose:
		return m.at("looseId") != 0
	case quarry.MuonMedium:
		return m.at("mediumId") != 0
	case quarry.MuonTight:
		return m.at("tightId") != 0
	case quarry.MuonHighPtGlobal:
		return m.intAt("highPtId") == highPtGlobal
	case quarry.MuonHighPtTracker:
		return m.intAt("highPtId") >= highPtTracker
	}
	return false
}

// EnergyScaleFactor implements quarry.Scalable
func (m *Muon) EnergyScaleFactor() float64 {
	return muonScaleFlat + muonScalePerTeV*m.Pt()/1000
}

// EnergyRes implements quarry.Smearable
func (m *Muon) EnergyRes() float64 {
	pt := m.Pt()
	if !m.has("ptErr") || pt <= 0 {
		return 0
	}
	return m.at("ptErr") / pt
}

// EnergyResScaleFactor implements quarry.Smearable
func (m *Muon) EnergyResScaleFactor() float64 { return 1 }

// EnergyResFrom implements quarry.Smearable
func (m *Muon) EnergyResFrom(r quarry.Resolution) float64 {
	return r.Resolution(m.Pt(), m.Eta(), m.rho())
}

// EnergyResScaleFactorFrom implements quarry.Smearable
func (m *Muon) EnergyResScaleFactorFrom(sf quarry.ScaleFactors, variation string) float64 {
	return sf.ScaleFactor(m.Eta(), variation)
}

func (m *Muon) String() string { return m.format(m.Name()) }

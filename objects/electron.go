package objects

import (
	"math"

	"github.com/ridge/quarry"
)

// Electron is a reconstructed electron
type Electron struct {
	view
}

// NewElectron is the quarry.Kind of electrons
func NewElectron(c *quarry.Collection, raw quarry.RawIndex) *Electron {
	return &Electron{view: newView(c, raw, "Electron")}
}

// Supercluster |eta| boundaries of the ECAL barrel and endcaps
const (
	barrelMaxEta = 1.4442
	endcapMinEta = 1.566
	endcapMaxEta = 2.5
)

// Relative energy scale uncertainties
const (
	eleScaleBarrel = 0.01
	eleScaleEndcap = 0.02
)

// Name implements quarry.Object
func (e *Electron) Name() string { return "Electron" }

// Mass implements quarry.Object
func (e *Electron) Mass() float64 { return e.at("mass") }

// Charge returns the electric charge
func (e *Electron) Charge() int { return int(e.intAt("charge")) }

// SCEta returns the pseudorapidity of the supercluster
func (e *Electron) SCEta() float64 {
	if e.has("deltaEtaSC") {
		return e.Eta() + e.at("deltaEtaSC")
	}
	return e.Eta()
}

// IsBarrel tells whether the supercluster is in the ECAL barrel
func (e *Electron) IsBarrel() bool {
	return math.Abs(e.SCEta()) < barrelMaxEta
}

// IsEndcap tells whether the supercluster is in an ECAL endcap
func (e *Electron) IsEndcap() bool {
	a := math.Abs(e.SCEta())
	return a > endcapMinEta && a < endcapMaxEta
}

// PtHeep returns the transverse energy of the supercluster, the momentum
// definition of the high-energy electron selection
func (e *Electron) PtHeep() float64 {
	if e.has("scEtOverPt") {
		return e.Pt() * (1 + e.at("scEtOverPt"))
	}
	return e.Pt()
}

// PassUserID implements quarry.Object
func (e *Electron) PassUserID(id quarry.ID) bool {
	switch id {
	case quarry.EleHEEP:
		return e.at("cutBased_HEEP") != 0
	case quarry.EleCutBasedVeto:
		return e.intAt("cutBased") >= 1
	case quarry.EleCutBasedLoose:
		return e.intAt("cutBased") >= 2
	case quarry.EleCutBasedMedium:
		return e.intAt("cutBased") >= 3
	case quarry.EleCutBasedTight:
		return e.intAt("cutBased") >= 4
	case quarry.EleMVA90:
		return e.at("mvaIso_WP90") != 0
	}
	return false
}

// EnergyScaleFactor implements quarry.Scalable
func (e *Electron) EnergyScaleFactor() float64 {
	if e.IsBarrel() {
		return eleScaleBarrel
	}
	return eleScaleEndcap
}

// EnergyRes implements quarry.Smearable
func (e *Electron) EnergyRes() float64 {
	if !e.has("energyErr") {
		return 0
	}
	energy := e.Pt() * math.Cosh(e.Eta())
	if energy <= 0 {
		return 0
	}
	return e.at("energyErr") / energy
}

// EnergyResScaleFactor implements quarry.Smearable
func (e *Electron) EnergyResScaleFactor() float64 { return 1 }

// EnergyResFrom implements quarry.Smearable
func (e *Electron) EnergyResFrom(r quarry.Resolution) float64 {
	return r.Resolution(e.Pt(), e.SCEta(), e.rho())
}

// EnergyResScaleFactorFrom implements quarry.Smearable
func (e *Electron) EnergyResScaleFactorFrom(sf quarry.ScaleFactors, variation string) float64 {
	return sf.ScaleFactor(e.SCEta(), variation)
}

func (e *Electron) String() string { return e.format(e.Name()) }

package objects

import (
	"fmt"
	"math"

	"github.com/ridge/quarry"
)

// GenParticle is a generator-level particle
type GenParticle struct {
	view
	motherLQ int
}

// NewGenParticle is the quarry.Kind of generator particles
func NewGenParticle(c *quarry.Collection, raw quarry.RawIndex) *GenParticle {
	return &GenParticle{view: newView(c, raw, "GenPart"), motherLQ: -1}
}

// statusFlags bits
const (
	flagIsHardProcess     = 7
	flagFromHardProcess   = 8
	flagIsLastCopy        = 13
	finalStateStatus      = 1
	pythia8ShowerStatus62 = 62
)

// PDG IDs
const (
	pdgElectron = 11
	pdgNuE      = 12
	pdgMuon     = 13
	pdgTau      = 15
	pdgTop      = 6
	pdgPhoton   = 22
	pdgZ        = 23
	pdgW        = 24
	pdgLQ       = 42
	pdgLQScalar = 9000007 // LQ toolbox S3m43
)

// Name implements quarry.Object
func (g *GenParticle) Name() string { return "GenParticle" }

// Mass implements quarry.Object
func (g *GenParticle) Mass() float64 { return g.at("mass") }

// PdgID returns the PDG particle ID
func (g *GenParticle) PdgID() int64 { return g.intAt("pdgId") }

// MotherIndex returns the raw index of the mother, -1 if none
func (g *GenParticle) MotherIndex() int { return int(g.intAt("genPartIdxMother")) }

// Status returns the generator status code
func (g *GenParticle) Status() int64 { return g.intAt("status") }

// StatusFlags returns the generator status bit field
func (g *GenParticle) StatusFlags() int64 { return g.intAt("statusFlags") }

// IsHardProcess tells whether the particle belongs to the hard process
func (g *GenParticle) IsHardProcess() bool { return bit(g.StatusFlags(), flagIsHardProcess) }

// IsFromHardProcess tells whether the particle descends from the hard process
func (g *GenParticle) IsFromHardProcess() bool { return bit(g.StatusFlags(), flagFromHardProcess) }

// IsFromHardProcessFinalState tells whether the particle is a stable
// descendant of the hard process
func (g *GenParticle) IsFromHardProcessFinalState() bool {
	return g.IsFromHardProcess() && g.Status() == finalStateStatus
}

// IsLastCopy tells whether this is the last copy of the particle in the
// decay chain
func (g *GenParticle) IsLastCopy() bool { return bit(g.StatusFlags(), flagIsLastCopy) }

// MotherLQIndex returns the raw index of the leptoquark ancestor found by
// the last GenFromLQ classification, -1 if none
func (g *GenParticle) MotherLQIndex() int { return g.motherLQ }

func (g *GenParticle) pdgAt(i int) int64 {
	return abs(g.c.Branches().IntAt(g.branch("pdgId"), i))
}

func (g *GenParticle) motherAt(i int) int {
	return int(g.c.Branches().IntAt(g.branch("genPartIdxMother"), i))
}

func (g *GenParticle) motherPdg() (int64, bool) {
	m := g.MotherIndex()
	if m < 0 {
		return 0, false
	}
	return g.pdgAt(m), true
}

// PassUserID implements quarry.Object
func (g *GenParticle) PassUserID(id quarry.ID) bool {
	pdg := abs(g.PdgID())
	switch id {
	case quarry.GenEleFromLQ:
		return pdg == pdgElectron && g.fromLQ()
	case quarry.GenMuonFromLQ:
		return pdg == pdgMuon && g.fromLQ()
	case quarry.GenTauFromLQ:
		return pdg == pdgTau && g.fromLQ()
	case quarry.GenFromLQ:
		return g.fromLQ()
	case quarry.GenEleHardScatter:
		return g.IsHardProcess() && pdg == pdgElectron
	case quarry.GenNuHardScatter:
		return g.IsHardProcess() && pdg == pdgNuE
	case quarry.GenMuHardScatter:
		return g.IsHardProcess() && pdg == pdgMuon
	case quarry.GenQuarkHardScatter:
		return g.IsHardProcess() && pdg > 0 && pdg < 9
	case quarry.GenQuarkHardProcess:
		return g.IsFromHardProcess() && pdg > 0 && pdg < 9
	case quarry.GenZFromHardProcessLastCopy:
		return pdg == pdgZ && g.IsFromHardProcess() && g.IsLastCopy()
	case quarry.GenNuFromW:
		return pdg == pdgNuE && g.fromMother(pdgW)
	case quarry.GenEleFromW:
		return pdg == pdgElectron && g.fromMother(pdgW)
	case quarry.GenEleFromDY:
		return pdg == pdgElectron && g.fromMother(pdgPhoton, pdgZ)
	case quarry.GenEleHardProcessFinalState:
		return pdg == pdgElectron && g.IsFromHardProcessFinalState()
	case quarry.GenEleFiducial:
		return isElectronFiducial(g.Eta())
	case quarry.GenMuonFiducial:
		return isMuonFiducial(g.Eta())
	case quarry.GenLQ:
		return pdg == pdgLQ || pdg == pdgLQScalar
	case quarry.GenTop:
		return pdg == pdgTop
	case quarry.GenStatus62:
		return g.Status() == pythia8ShowerStatus62
	case quarry.GenIsLastCopy:
		return g.IsLastCopy()
	}
	return false
}

// fromLQ walks up the mother chain looking for a leptoquark and remembers
// the index of the one found
func (g *GenParticle) fromLQ() bool {
	for m := g.MotherIndex(); m > 0; m = g.motherAt(m) {
		if pdg := g.pdgAt(m); pdg == pdgLQ || pdg == pdgLQScalar {
			g.motherLQ = m
			return true
		}
	}
	return false
}

// fromMother tells whether the particle is a hard-process daughter of a
// particle with one of the given PDG IDs
func (g *GenParticle) fromMother(pdgs ...int64) bool {
	if !g.IsHardProcess() && g.Status() != 3 {
		return false
	}
	mother, ok := g.motherPdg()
	if !ok {
		return false
	}
	for _, pdg := range pdgs {
		if mother == pdg {
			return true
		}
	}
	return false
}

func isElectronFiducial(eta float64) bool {
	a := math.Abs(eta)
	return a < barrelMaxEta || (a > endcapMinEta && a < endcapMaxEta)
}

const muonMaxEta = 2.4

func isMuonFiducial(eta float64) bool {
	return math.Abs(eta) < muonMaxEta
}

func (g *GenParticle) String() string {
	return fmt.Sprintf("%s, PDG = %d, MotherIndex = %d, Status = %d, StatusFlags = %016b, Mass = %g",
		g.format(g.Name()), g.PdgID(), g.MotherIndex(), g.Status(), g.StatusFlags(), g.Mass())
}

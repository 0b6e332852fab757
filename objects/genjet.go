package objects

import (
	"github.com/ridge/quarry"
)

// GenJet is a generator-level jet
type GenJet struct {
	view
}

// NewGenJet is the quarry.Kind of generator jets
func NewGenJet(c *quarry.Collection, raw quarry.RawIndex) *GenJet {
	return &GenJet{view: newView(c, raw, "GenJet")}
}

// Name implements quarry.Object
func (g *GenJet) Name() string { return "GenJet" }

// Mass implements quarry.Object
func (g *GenJet) Mass() float64 { return g.at("mass") }

// PartonFlavour returns the flavour of the matched parton
func (g *GenJet) PartonFlavour() int { return int(g.intAt("partonFlavour")) }

// PassUserID implements quarry.Object. Generator jets have no
// classifications.
func (g *GenJet) PassUserID(quarry.ID) bool { return false }

func (g *GenJet) String() string { return g.format(g.Name()) }

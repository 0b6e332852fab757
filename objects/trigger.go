package objects

import (
	"github.com/ridge/quarry"
)

// TriggerObject is an object reconstructed by the high-level trigger.
//
// If the collection has a trigger object index set, the object only passes
// an identity classification when it also fired the filter with that bit
// number.
type TriggerObject struct {
	view
	leg    int16
	hasLeg bool
}

// NewTriggerObject is the quarry.Kind of trigger objects
func NewTriggerObject(c *quarry.Collection, raw quarry.RawIndex) *TriggerObject {
	leg, ok := c.TriggerObjectIndex()
	return &TriggerObject{view: newView(c, raw, "TrigObj"), leg: leg, hasLeg: ok}
}

// trigger object type IDs
const (
	trigIDJet      = 1
	trigIDElectron = 11
	trigIDMuon     = 13
)

// Name implements quarry.Object
func (t *TriggerObject) Name() string { return "HLTriggerObject" }

// Mass implements quarry.Object
func (t *TriggerObject) Mass() float64 { return 0 }

// ObjectID returns the trigger object type
func (t *TriggerObject) ObjectID() int64 { return t.intAt("id") }

// FilterBits returns the fired filter bit field
func (t *TriggerObject) FilterBits() int64 { return t.intAt("filterBits") }

// PassUserID implements quarry.Object
func (t *TriggerObject) PassUserID(id quarry.ID) bool {
	var want int64
	switch id {
	case quarry.TrigElectron:
		want = trigIDElectron
	case quarry.TrigMuon:
		want = trigIDMuon
	case quarry.TrigJet:
		want = trigIDJet
	default:
		return false
	}
	if t.ObjectID() != want {
		return false
	}
	return !t.hasLeg || bit(t.FilterBits(), uint(t.leg))
}

func (t *TriggerObject) String() string { return t.format(t.Name()) }

// Package quarry is an object-collection algebra for collider event analysis.
//
// The name follows the sedimentary theme: events are the bedrock, and
// analyses quarry smaller and smaller selections out of them.
//
// # Collections
//
// A Collection is an ordered set of raw indices into one event's flat array
// of physics objects of a single kind (the third jet, the first electron, and
// so on). A collection does not hold any kinematics itself: objects are read
// through the Branches interface, which exposes the current event's columns
// by name. Many collections of the same event share one Branches value.
//
// Every selection returns a new Collection and leaves the source untouched,
// so one event can carry several overlapping selections at once:
//
//	electrons := quarry.New(ev, ev.Len("Electron_pt"))
//	heep := quarry.SkimByID(electrons, objects.NewElectron, quarry.EleHEEP)
//	heep = quarry.SkimByMinPtHeep(heep, objects.NewElectron, 50)
//	jets := quarry.New(ev, ev.Len("Jet_pt"))
//	jets = quarry.SkimByVetoDRMatch(jets, objects.NewJet, heep, objects.NewElectron, 0.4)
//
// # Object kinds
//
// Operations are generic functions parameterized by a Kind: a factory that
// builds an object view from a collection and a raw index. The view
// implements Object (kinematics and identity classification) and, for kinds
// that support it, Scalable or Smearable. Views are ephemeral: a view is built
// on demand, and changing its kinematics with SetPt and friends never affects
// the collection or other views of the same object.
//
// # Systematic variations
//
// A collection may carry named systematic variation arrays. They are indexed
// by raw index, not by position within the collection, so skimming a
// collection never re-indexes them: a skim simply inherits the arrays of its
// source.
//
// # Energy redistribution
//
// ScaleEnergy and MatchAndSmearEnergy return materialized slices of modified
// object views rather than collections, and accumulate the resulting change
// of the event's missing transverse momentum into a METDelta.
package quarry

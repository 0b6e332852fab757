// Package jme computes jet energy scale and resolution variations of jet
// collections and their propagation to missing transverse momentum.
//
// A Coordinator translates between collections and the flat, densely packed
// arrays a calculator works on. Calculators are pure functions of their
// arguments; Tables is the built-in one.
package jme

import (
	"errors"
	"fmt"

	"github.com/ridge/quarry"
	"github.com/ridge/quarry/objects"
)

// Mode is the kind of variations a Coordinator computes
type Mode int

// Modes
const (
	ModeJets Mode = iota
	ModeMET
)

func (m Mode) String() string {
	switch m {
	case ModeJets:
		return "jets"
	case ModeMET:
		return "met"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ErrWrongMode is returned by a Coordinator operation that does not belong
// to its mode
var ErrWrongMode = errors.New("operation is not supported in this mode")

// JetArgs are the per-event inputs of a jet calculator. Per-jet slices are
// in collection order.
type JetArgs struct {
	Pt, Eta, Phi, Mass []float64
	RawFactor          []float64
	Area               []float64
	JetID              []int64
	Rho                float64

	// Simulation only, empty for data
	GenJetIdx     []int // position in the GenJet slices, -1 if unmatched
	PartonFlavour []int
	Seed          uint64
	GenJetPt      []float64
	GenJetEta     []float64
	GenJetPhi     []float64
	GenJetMass    []float64
}

// IsMC tells whether the arguments carry generator information
func (a *JetArgs) IsMC() bool {
	return a.GenJetIdx != nil
}

// METArgs are the per-event inputs of a MET calculator
type METArgs struct {
	JetArgs

	MuonSubtrFactor []float64
	NeEmEF          []float64
	ChEmEF          []float64

	RawMETPt, RawMETPhi float64

	// Jets below the analysis threshold that still enter type-1
	// corrections. Empty if the event does not store them.
	LowPtRawPt           []float64
	LowPtEta             []float64
	LowPtPhi             []float64
	LowPtArea            []float64
	LowPtMuonSubtrFactor []float64

	UnclustEnUpDeltaX, UnclustEnUpDeltaY float64
}

// JetResult holds per-variation values, each in the order of the input jets
type JetResult struct {
	Pt   [][]float64
	Mass [][]float64
}

// METResult holds per-variation MET values
type METResult struct {
	Pt  []float64
	Phi []float64
}

// JetCalculator computes jet variations. Results are indexed by the position
// of the variation in Available().
type JetCalculator interface {
	Available() []string
	ProduceJets(args JetArgs) JetResult
}

// METCalculator computes type-1 MET variations. Results are indexed by the
// position of the variation in Available().
type METCalculator interface {
	Available() []string
	ProduceMET(args METArgs) METResult
}

// Coordinator feeds a calculator with collection contents and stores the
// results
type Coordinator struct {
	mode Mode
	jets JetCalculator
	met  METCalculator
}

// NewJetCoordinator creates a coordinator computing jet variations
func NewJetCoordinator(calc JetCalculator) *Coordinator {
	return &Coordinator{mode: ModeJets, jets: calc}
}

// NewMETCoordinator creates a coordinator computing MET variations
func NewMETCoordinator(calc METCalculator) *Coordinator {
	return &Coordinator{mode: ModeMET, met: calc}
}

// Mode returns the mode chosen at construction
func (c *Coordinator) Mode() Mode {
	return c.mode
}

// Available returns the names of the variations the calculator produces
func (c *Coordinator) Available() []string {
	if c.mode == ModeMET {
		return c.met.Available()
	}
	return c.jets.Available()
}

// ComputeJetVariations computes the variations of every jet and stores them
// on the collection as Pt_<variation> and mass_<variation>. Values of raw
// indices that are not constituents are 0.
func (c *Coordinator) ComputeJetVariations(jets, genJets *quarry.Collection, isMC bool) error {
	if c.mode != ModeJets {
		return fmt.Errorf("jet variations in %s mode: %w", c.mode, ErrWrongMode)
	}
	variations := c.jets.Available()
	res := c.jets.ProduceJets(jetArgs(jets, genJets, isMC))
	if len(res.Pt) != len(variations) || len(res.Mass) != len(variations) {
		panic(fmt.Errorf("calculator returned %d/%d results for %d variations", len(res.Pt), len(res.Mass), len(variations)))
	}

	raw := jets.RawIndices()
	size := expandedSize(raw)
	names := make([]string, 0, 2*len(variations))
	arrays := make([][]float64, 0, 2*len(variations))
	for i, v := range variations {
		names = append(names, "Pt_"+v)
		arrays = append(arrays, Expand(raw, res.Pt[i], size))
	}
	for i, v := range variations {
		names = append(names, "mass_"+v)
		arrays = append(arrays, Expand(raw, res.Mass[i], size))
	}
	jets.SetSystematics(names, arrays)
	return nil
}

// ComputeType1METVariations computes the type-1 corrected MET for every
// variation and returns it as Pt_<variation> and Phi_<variation>
func (c *Coordinator) ComputeType1METVariations(jets, genJets *quarry.Collection, isMC bool) (map[string]float64, error) {
	if c.mode != ModeMET {
		return nil, fmt.Errorf("MET variations in %s mode: %w", c.mode, ErrWrongMode)
	}
	variations := c.met.Available()
	res := c.met.ProduceMET(metArgs(jets, genJets, isMC))
	if len(res.Pt) != len(variations) || len(res.Phi) != len(variations) {
		panic(fmt.Errorf("calculator returned %d/%d results for %d variations", len(res.Pt), len(res.Phi), len(variations)))
	}

	met := make(map[string]float64, 2*len(variations))
	for i, v := range variations {
		met["Pt_"+v] = res.Pt[i]
		met["Phi_"+v] = res.Phi[i]
	}
	return met, nil
}

// Expand spreads values given in the order of raw onto an array of the given
// size indexed by raw index. Positions not in raw are 0.
//
// It panics if raw and compact differ in length, raw has duplicates or an
// index does not fit.
func Expand(raw []quarry.RawIndex, compact []float64, size int) []float64 {
	if len(raw) != len(compact) {
		panic(fmt.Errorf("%d raw indices for %d values", len(raw), len(compact)))
	}
	if need := expandedSize(raw); size < need {
		panic(fmt.Errorf("expanded size %d is too small for raw index %d", size, need-1))
	}
	out := make([]float64, size)
	seen := make([]bool, size)
	for i, r := range raw {
		if seen[r] {
			panic(fmt.Errorf("duplicate raw index %d", r))
		}
		seen[r] = true
		out[r] = compact[i]
	}
	return out
}

func expandedSize(raw []quarry.RawIndex) int {
	size := 0
	for _, r := range raw {
		if int(r)+1 > size {
			size = int(r) + 1
		}
	}
	return size
}

const (
	rhoBranch   = "fixedGridRhoFastjetAll"
	eventBranch = "event"
)

func jetArgs(jets, genJets *quarry.Collection, isMC bool) JetArgs {
	views := quarry.Constituents(jets, objects.NewJet)
	args := JetArgs{
		Pt:        make([]float64, len(views)),
		Eta:       make([]float64, len(views)),
		Phi:       make([]float64, len(views)),
		Mass:      make([]float64, len(views)),
		RawFactor: make([]float64, len(views)),
		Area:      make([]float64, len(views)),
		JetID:     make([]int64, len(views)),
		Rho:       jets.Branches().Value(rhoBranch),
	}
	for i, j := range views {
		args.Pt[i] = j.Pt()
		args.Eta[i] = j.Eta()
		args.Phi[i] = j.Phi()
		args.Mass[i] = j.Mass()
		args.RawFactor[i] = j.RawFactor()
		args.Area[i] = j.Area()
		args.JetID[i] = j.JetID()
	}
	if !isMC {
		return args
	}

	// genJetIdx refers to the event's generator jets; the calculator gets
	// only the members of genJets
	position := map[int]int{}
	if genJets != nil {
		for i, g := range quarry.Constituents(genJets, objects.NewGenJet) {
			position[int(g.RawIndex())] = i
			args.GenJetPt = append(args.GenJetPt, g.Pt())
			args.GenJetEta = append(args.GenJetEta, g.Eta())
			args.GenJetPhi = append(args.GenJetPhi, g.Phi())
			args.GenJetMass = append(args.GenJetMass, g.Mass())
		}
	}
	args.GenJetIdx = make([]int, len(views))
	args.PartonFlavour = make([]int, len(views))
	for i, j := range views {
		args.GenJetIdx[i] = -1
		if pos, ok := position[j.GenJetIndex()]; ok {
			args.GenJetIdx[i] = pos
		}
		args.PartonFlavour[i] = j.PartonFlavour()
	}
	args.Seed = jets.Branches().Uint(eventBranch)
	return args
}

const (
	rawMETPtBranch    = "RawMET_pt"
	rawMETPhiBranch   = "RawMET_phi"
	unclustUpDXBranch = "MET_MetUnclustEnUpDeltaX"
	unclustUpDYBranch = "MET_MetUnclustEnUpDeltaY"
	lowPtPrefix       = "CorrT1METJet_"
)

func metArgs(jets, genJets *quarry.Collection, isMC bool) METArgs {
	b := jets.Branches()
	args := METArgs{
		JetArgs:           jetArgs(jets, genJets, isMC),
		RawMETPt:          b.Value(rawMETPtBranch),
		RawMETPhi:         b.Value(rawMETPhiBranch),
		UnclustEnUpDeltaX: b.Value(unclustUpDXBranch),
		UnclustEnUpDeltaY: b.Value(unclustUpDYBranch),
	}
	for _, j := range quarry.Constituents(jets, objects.NewJet) {
		args.MuonSubtrFactor = append(args.MuonSubtrFactor, j.MuonSubtrFactor())
		args.NeEmEF = append(args.NeEmEF, j.NeEmEF())
		args.ChEmEF = append(args.ChEmEF, j.ChEmEF())
	}

	if b.HasBranch(lowPtPrefix + "rawPt") {
		for i, n := 0, b.Len(lowPtPrefix+"rawPt"); i < n; i++ {
			args.LowPtRawPt = append(args.LowPtRawPt, b.At(lowPtPrefix+"rawPt", i))
			args.LowPtEta = append(args.LowPtEta, b.At(lowPtPrefix+"eta", i))
			args.LowPtPhi = append(args.LowPtPhi, b.At(lowPtPrefix+"phi", i))
			args.LowPtArea = append(args.LowPtArea, b.At(lowPtPrefix+"area", i))
			args.LowPtMuonSubtrFactor = append(args.LowPtMuonSubtrFactor, b.At(lowPtPrefix+"muonSubtrFactor", i))
		}
	}
	return args
}

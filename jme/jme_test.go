package jme_test

import (
	"math"
	"strings"
	"testing"

	"github.com/ridge/quarry"
	"github.com/ridge/quarry/branch"
	"github.com/ridge/quarry/corrections"
	"github.com/ridge/quarry/jme"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	require.Equal(t, []float64{0, 0, 10, 0, 0, 20, 0, 30},
		jme.Expand([]quarry.RawIndex{2, 5, 7}, []float64{10, 20, 30}, 8))
	require.Equal(t, []float64{0, 0, 10, 0, 0, 20, 0, 30},
		jme.Expand([]quarry.RawIndex{7, 2, 5}, []float64{30, 10, 20}, 8))
	require.Equal(t, []float64{0, 1, 0}, jme.Expand([]quarry.RawIndex{1}, []float64{1}, 3))
	require.Empty(t, jme.Expand(nil, nil, 0))

	require.Panics(t, func() { jme.Expand([]quarry.RawIndex{1, 2}, []float64{1}, 3) })
	require.Panics(t, func() { jme.Expand([]quarry.RawIndex{1, 1}, []float64{1, 2}, 3) })
	require.Panics(t, func() { jme.Expand([]quarry.RawIndex{5}, []float64{1}, 3) })
}

func jetEvent() *branch.Event {
	return branch.NewEvent().
		Set("Jet_pt", []float32{100, 50, 40, 30}).
		Set("Jet_eta", []float32{0.2, -1.0, 2.0, 0.5}).
		Set("Jet_phi", []float32{0, 1, 2, -1}).
		Set("Jet_mass", []float32{10, 5, 4, 3}).
		Set("Jet_rawFactor", []float64{0.1, 0.1, 0.1, 0.1}).
		Set("Jet_area", []float32{0.5, 0.5, 0.5, 0.5}).
		Set("Jet_jetId", []int32{6, 6, 2, 6}).
		Set("Jet_genJetIdx", []int32{1, -1, 0, 0}).
		Set("Jet_partonFlavour", []int32{5, 21, 1, 2}).
		Set("Jet_muonSubtrFactor", []float32{0, 0, 0, 0}).
		Set("Jet_neEmEF", []float32{0.1, 0.1, 0.95, 0.1}).
		Set("Jet_chEmEF", []float32{0.1, 0.1, 0.0, 0.1}).
		Set("GenJet_pt", []float32{38, 95}).
		Set("GenJet_eta", []float32{2.0, 0.2}).
		Set("GenJet_phi", []float32{2, 0}).
		Set("GenJet_mass", []float32{4, 9}).
		Set("fixedGridRhoFastjetAll", float32(20)).
		Set("event", uint64(12345)).
		Set("RawMET_pt", float32(30)).
		Set("RawMET_phi", float32(0.5)).
		Set("MET_MetUnclustEnUpDeltaX", float32(2)).
		Set("MET_MetUnclustEnUpDeltaY", float32(-1))
}

type recordingCalculator struct {
	jets jme.JetArgs
	met  jme.METArgs
}

func (c *recordingCalculator) Available() []string { return []string{"nominal", "up"} }

func (c *recordingCalculator) ProduceJets(args jme.JetArgs) jme.JetResult {
	c.jets = args
	var res jme.JetResult
	for v := 1; v <= 2; v++ {
		pt := make([]float64, len(args.Pt))
		mass := make([]float64, len(args.Pt))
		for i := range args.Pt {
			pt[i] = float64(v) * args.Pt[i]
			mass[i] = float64(v) * args.Mass[i]
		}
		res.Pt = append(res.Pt, pt)
		res.Mass = append(res.Mass, mass)
	}
	return res
}

func (c *recordingCalculator) ProduceMET(args jme.METArgs) jme.METResult {
	c.met = args
	return jme.METResult{Pt: []float64{args.RawMETPt, 2 * args.RawMETPt}, Phi: []float64{args.RawMETPhi, -args.RawMETPhi}}
}

func TestComputeJetVariations(t *testing.T) {
	ev := jetEvent()
	jets := quarry.NewFromIndices(ev, []quarry.RawIndex{3, 0, 2})
	genJets := quarry.NewFromIndices(ev, []quarry.RawIndex{1})

	calc := &recordingCalculator{}
	c := jme.NewJetCoordinator(calc)
	require.Equal(t, jme.ModeJets, c.Mode())
	require.Equal(t, []string{"nominal", "up"}, c.Available())
	require.NoError(t, c.ComputeJetVariations(jets, genJets, true))

	args := calc.jets
	require.Equal(t, []float64{30, 100, 40}, args.Pt)
	require.Equal(t, []int64{6, 6, 2}, args.JetID)
	require.Equal(t, 20.0, args.Rho)
	require.Equal(t, uint64(12345), args.Seed)
	require.Equal(t, []int{2, 5, 1}, args.PartonFlavour)
	// only GenJet 1 is a member, at position 0
	require.Equal(t, []int{-1, 0, -1}, args.GenJetIdx)
	require.Equal(t, []float64{95}, args.GenJetPt)

	require.Equal(t, []string{"Pt_nominal", "Pt_up", "mass_nominal", "mass_up"}, jets.SystematicNames())
	require.Equal(t, 100.0, jets.SystematicValue(0, "Pt_nominal"))
	require.Equal(t, 60.0, jets.SystematicValue(3, "Pt_up"))
	require.Equal(t, 8.0, jets.SystematicValue(2, "mass_up"))
	require.Equal(t, 0.0, jets.SystematicValue(1, "Pt_up"))
	for _, a := range jets.Systematics() {
		require.Len(t, a, 4)
	}
}

func TestComputeJetVariationsData(t *testing.T) {
	ev := jetEvent()
	jets := quarry.New(ev, 2)
	calc := &recordingCalculator{}
	require.NoError(t, jme.NewJetCoordinator(calc).ComputeJetVariations(jets, nil, false))
	require.False(t, calc.jets.IsMC())
	require.Nil(t, calc.jets.GenJetPt)
	require.Zero(t, calc.jets.Seed)
}

func TestComputeJetVariationsEmpty(t *testing.T) {
	jets := quarry.New(jetEvent(), 0)
	require.NoError(t, jme.NewJetCoordinator(&recordingCalculator{}).ComputeJetVariations(jets, nil, false))
	require.True(t, jets.HasSystematic("Pt_nominal"))
	require.Empty(t, jets.Systematics()[0])
}

func TestComputeType1METVariations(t *testing.T) {
	ev := jetEvent()
	calc := &recordingCalculator{}
	c := jme.NewMETCoordinator(calc)
	met, err := c.ComputeType1METVariations(quarry.New(ev, 4), nil, false)
	require.NoError(t, err)
	require.Equal(t, map[string]float64{
		"Pt_nominal": 30, "Phi_nominal": 0.5,
		"Pt_up": 60, "Phi_up": -0.5,
	}, met)
	require.Equal(t, []float64{0, 0, 0, 0}, calc.met.MuonSubtrFactor)
	require.Equal(t, 2.0, calc.met.UnclustEnUpDeltaX)
	require.Empty(t, calc.met.LowPtRawPt)
}

func TestWrongMode(t *testing.T) {
	jets := quarry.New(jetEvent(), 1)
	_, err := jme.NewJetCoordinator(&recordingCalculator{}).ComputeType1METVariations(jets, nil, false)
	require.ErrorIs(t, err, jme.ErrWrongMode)
	err = jme.NewMETCoordinator(&recordingCalculator{}).ComputeJetVariations(jets, nil, false)
	require.ErrorIs(t, err, jme.ErrWrongMode)
	require.False(t, jets.HasSystematic("Pt_nominal"))
}

const unitSF = `
ptResolution:
  etaEdges: [0, 5.2]
  n: [3]
  s: [1]
  c: [0.05]
  nRho: 0
jerScaleFactors:
  etaEdges: [0, 5.2]
  nom: [1]
  up: [1.1]
  down: [1]
jes:
  Total:
    etaEdges: [-5.2, 5.2]
    values: [0.02]
ewk:
  edges: [0, 1000]
  values: [1]
`

func TestTablesUnitScaleFactor(t *testing.T) {
	set, err := corrections.Load(strings.NewReader(unitSF))
	require.NoError(t, err)
	calc, err := jme.NewTables(set, jme.TablesConfig{})
	require.NoError(t, err)
	require.Equal(t, []string{"nominal", "jerup", "jerdown", "jesTotalup", "jesTotaldown"}, calc.Available())

	ev := jetEvent()
	jets := quarry.New(ev, 4)
	genJets := quarry.New(ev, 2)
	require.NoError(t, jme.NewJetCoordinator(calc).ComputeJetVariations(jets, genJets, true))

	for raw, pt := range []float64{100, 50, 40, 30} {
		r := quarry.RawIndex(raw)
		require.InDelta(t, pt, jets.SystematicValue(r, "Pt_nominal"), 1e-9)
		require.InDelta(t, pt, jets.SystematicValue(r, "Pt_jerdown"), 1e-9)
		require.InDelta(t, pt*1.02, jets.SystematicValue(r, "Pt_jesTotalup"), 1e-9)
		require.InDelta(t, pt*0.98, jets.SystematicValue(r, "Pt_jesTotaldown"), 1e-9)
	}
	// jet 0 is matched to GenJet 1: 1 + 0.1 * (100 - 95) / 100
	require.InDelta(t, 100.5, jets.SystematicValue(0, "Pt_jerup"), 1e-9)
	require.InDelta(t, 10.05, jets.SystematicValue(0, "mass_jerup"), 1e-9)
}

func TestTablesHybridSmearing(t *testing.T) {
	calc, err := jme.NewTables(corrections.Defaults(), jme.TablesConfig{JESSources: []string{"Total"}})
	require.NoError(t, err)

	args := jme.JetArgs{
		Pt:         []float64{100, 50},
		Eta:        []float64{0.2, -1.0},
		Phi:        []float64{0, 1},
		Mass:       []float64{10, 5},
		GenJetIdx:  []int{0, -1},
		Seed:       42,
		GenJetPt:   []float64{95},
		GenJetEta:  []float64{0.2},
		GenJetPhi:  []float64{0},
		GenJetMass: []float64{9},
	}
	res := calc.ProduceJets(args)
	require.Len(t, res.Pt, 5)

	// matched: deterministic scaling toward the generator jet
	require.InDelta(t, 100*(1+0.15*0.05), res.Pt[0][0], 1e-9)
	require.InDelta(t, 100*(1+0.193*0.05), res.Pt[1][0], 1e-9)
	require.InDelta(t, 100*(1+0.107*0.05), res.Pt[2][0], 1e-9)

	// unmatched: one draw, wider for larger scale factors
	nom := res.Pt[0][1]/50 - 1
	up := res.Pt[1][1]/50 - 1
	require.GreaterOrEqual(t, math.Abs(up), math.Abs(nom))
	require.Equal(t, math.Signbit(nom), math.Signbit(up))

	require.Equal(t, res, calc.ProduceJets(args))
	args.Seed = 43
	require.NotEqual(t, res.Pt[0][1], calc.ProduceJets(args).Pt[0][1])
}

func TestTablesUnknownSource(t *testing.T) {
	_, err := jme.NewTables(corrections.Defaults(), jme.TablesConfig{JESSources: []string{"Absolute"}})
	require.Error(t, err)
}

func TestMETTables(t *testing.T) {
	set, err := corrections.Load(strings.NewReader(unitSF))
	require.NoError(t, err)
	calc, err := jme.NewMETTables(set, jme.TablesConfig{})
	require.NoError(t, err)
	require.Equal(t, []string{"nominal", "jerup", "jerdown", "jesTotalup", "jesTotaldown", "unclustEnup", "unclustEndown"}, calc.Available())

	ev := jetEvent()
	met, err := jme.NewMETCoordinator(calc).ComputeType1METVariations(quarry.New(ev, 4), nil, false)
	require.NoError(t, err)
	require.Len(t, met, 14)

	// nominal: raw MET minus the JEC of jets 0, 1 and 3 (jet 2 is
	// electromagnetic)
	x := 30 * math.Cos(0.5)
	y := 30 * math.Sin(0.5)
	for i, pt := range []float64{100, 50, 40, 30} {
		if i == 2 {
			continue
		}
		phi := []float64{0, 1, 2, -1}[i]
		x -= 0.1 * pt * math.Cos(phi)
		y -= 0.1 * pt * math.Sin(phi)
	}
	require.InDelta(t, math.Hypot(x, y), met["Pt_nominal"], 1e-9)
	require.InDelta(t, math.Atan2(y, x), met["Phi_nominal"], 1e-9)
	require.InDelta(t, math.Hypot(x+2, y-1), met["Pt_unclustEnup"], 1e-9)
	require.InDelta(t, math.Hypot(x-2, y+1), met["Pt_unclustEndown"], 1e-9)
	require.NotEqual(t, met["Pt_nominal"], met["Pt_jesTotalup"])
}

func TestMETTablesLowPtJets(t *testing.T) {
	set, err := corrections.Load(strings.NewReader(unitSF))
	require.NoError(t, err)
	calc, err := jme.NewMETTables(set, jme.TablesConfig{})
	require.NoError(t, err)

	ev := jetEvent().
		Set("CorrT1METJet_rawPt", []float32{15.25}).
		Set("CorrT1METJet_eta", []float32{0}).
		Set("CorrT1METJet_phi", []float32{0}).
		Set("CorrT1METJet_area", []float32{0.5}).
		Set("CorrT1METJet_muonSubtrFactor", []float32{0})
	withLowPt, err := jme.NewMETCoordinator(calc).ComputeType1METVariations(quarry.New(ev, 0), nil, false)
	require.NoError(t, err)

	// nominal is untouched, up shifts by 2% of 15.25 GeV along x; down falls
	// below the threshold
	raw := 30.0
	require.InDelta(t, raw, withLowPt["Pt_nominal"], 1e-9)
	x := raw*math.Cos(0.5) - 0.02*15.25
	y := raw * math.Sin(0.5)
	require.InDelta(t, math.Hypot(x, y), withLowPt["Pt_jesTotalup"], 1e-9)
	require.InDelta(t, raw, withLowPt["Pt_jesTotaldown"], 1e-9)
}

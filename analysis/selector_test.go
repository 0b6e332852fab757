package analysis

import (
	"testing"

	"github.com/ridge/quarry/branch"
	"github.com/ridge/quarry/corrections"
	"github.com/ridge/quarry/jme"
	"github.com/ridge/quarry/tlog"
	"github.com/stretchr/testify/require"
)

// recoEvent has two duplicate electrons and one outside the acceptance, a
// muon, and jets overlapping each lepton
func recoEvent() *branch.Event {
	return branch.NewEvent().
		Set("nElectron", int32(4)).
		Set("Electron_pt", []float32{120, 120, 30, 80}).
		Set("Electron_eta", []float32{0.5, 0.5, 1.0, 2.6}).
		Set("Electron_phi", []float32{0, 0, 1, 2}).
		Set("Electron_cutBased_HEEP", []bool{true, true, true, true}).
		Set("nMuon", int32(2)).
		Set("Muon_pt", []float32{200, 40}).
		Set("Muon_eta", []float32{-1, 0}).
		Set("Muon_phi", []float32{2, -2}).
		Set("Muon_highPtId", []uint8{2, 2}).
		Set("nJet", int32(5)).
		Set("Jet_pt", []float32{150, 118, 60, 45, 70}).
		Set("Jet_eta", []float32{0.5, 0.5, -1, 0, 3.0}).
		Set("Jet_phi", []float32{0.02, 3, 2.05, -1, 1}).
		Set("Jet_jetId", []int32{6, 6, 6, 6, 6}).
		Set("event", uint64(42))
}

func simEvent() *branch.Event {
	return recoEvent().
		Set("Jet_mass", []float32{15, 12, 6, 5, 7}).
		Set("Jet_rawFactor", []float32{0.1, 0.1, 0.1, 0.1, 0.1}).
		Set("Jet_area", []float32{0.5, 0.5, 0.5, 0.5, 0.5}).
		Set("Jet_genJetIdx", []int32{-1, 0, -1, 1, -1}).
		Set("Jet_partonFlavour", []int32{0, 21, 0, 1, 0}).
		Set("Jet_muonSubtrFactor", []float32{0, 0, 0, 0, 0}).
		Set("Jet_neEmEF", []float32{0.1, 0.1, 0.1, 0.1, 0.1}).
		Set("Jet_chEmEF", []float32{0.1, 0.1, 0.1, 0.1, 0.1}).
		Set("nGenJet", int32(2)).
		Set("GenJet_pt", []float32{115, 44}).
		Set("GenJet_eta", []float32{0.5, 0}).
		Set("GenJet_phi", []float32{3, -1}).
		Set("GenJet_mass", []float32{10, 5}).
		Set("nGenPart", int32(2)).
		Set("GenPart_pt", []float32{118, 190}).
		Set("GenPart_eta", []float32{0.5, -1}).
		Set("GenPart_phi", []float32{0.01, 2}).
		Set("GenPart_mass", []float32{0, 0.1}).
		Set("GenPart_pdgId", []int32{11, 13}).
		Set("GenPart_status", []int32{1, 1}).
		Set("GenPart_statusFlags", []int32{1 << 7, 1 << 7}).
		Set("GenPart_genPartIdxMother", []int16{-1, -1}).
		Set("fixedGridRhoFastjetAll", float32(20)).
		Set("genWeight", float32(2)).
		Set("RawMET_pt", float32(40)).
		Set("RawMET_phi", float32(1)).
		Set("MET_MetUnclustEnUpDeltaX", float32(1.5)).
		Set("MET_MetUnclustEnUpDeltaY", float32(-0.5))
}

func TestSelectorData(t *testing.T) {
	config := DefaultConfig()
	config.Inputs = []string{"data.root"}
	s, err := NewSelector(&config, corrections.Defaults(), tlog.NewForTesting(t))
	require.NoError(t, err)

	res := s.Process(recoEvent())
	require.Equal(t, 1, res.Electrons)
	require.Equal(t, 1, res.Muons)
	// the two leading jets overlap a lepton, one is forward and one soft
	require.Equal(t, 1, res.Jets)
	require.Equal(t, 1, res.ElectronsScaleUp)
	require.Equal(t, 1, res.ElectronsScaleDown)
	require.Zero(t, res.GenMatchedElectrons)
	require.Nil(t, res.JetsByVariation)
	require.Nil(t, res.MET)
	require.Equal(t, 1.0, res.Weight)
}

func TestSelectorSimulation(t *testing.T) {
	config := DefaultConfig()
	config.Inputs = []string{"sim.root"}
	config.IsMC = true
	config.Period = "2018"
	config.Smearing.Enabled = true
	config.JME = JMEConfig{Mode: "jets", JESSources: []string{"Total"}}
	require.NoError(t, config.Validate())

	s, err := NewSelector(&config, corrections.Defaults(), tlog.NewForTesting(t))
	require.NoError(t, err)

	res := s.Process(simEvent())
	require.Equal(t, 1, res.Electrons)
	require.Equal(t, 1, res.Jets)
	require.Equal(t, 1, res.GenMatchedElectrons)
	require.Equal(t, 1, res.SmearedJets)
	require.Greater(t, res.SmearMET, 0.0)

	require.Equal(t, map[string]int{
		jme.Nominal:    1,
		jme.JERUp:      1,
		jme.JERDown:    1,
		"jesTotalup":   1,
		"jesTotaldown": 1,
	}, res.JetsByVariation)
	require.Nil(t, res.MET)

	dy, err := corrections.NewDYNJet("2018")
	require.NoError(t, err)
	require.Equal(t, 2*dy.Weight(1), res.Weight)

	// same event, same smearing
	require.Equal(t, res, s.Process(simEvent()))
}

func TestSelectorEWK(t *testing.T) {
	config := DefaultConfig()
	config.Inputs = []string{"sim.root"}
	config.IsMC = true
	config.EWKReweight = true
	require.NoError(t, config.Validate())

	corr := corrections.Defaults()
	s, err := NewSelector(&config, corr, tlog.NewForTesting(t))
	require.NoError(t, err)

	// no generated Z
	require.Equal(t, 2.0, s.Process(simEvent()).Weight)

	withZ := simEvent().
		Set("nGenPart", int32(3)).
		Set("GenPart_pt", []float32{118, 190, 5000}).
		Set("GenPart_eta", []float32{0.5, -1, 0}).
		Set("GenPart_phi", []float32{0.01, 2, 0}).
		Set("GenPart_mass", []float32{0, 0.1, 91}).
		Set("GenPart_pdgId", []int32{11, 13, 23}).
		Set("GenPart_status", []int32{1, 1, 62}).
		Set("GenPart_statusFlags", []int32{1 << 7, 1 << 7, 1<<8 | 1<<13}).
		Set("GenPart_genPartIdxMother", []int16{-1, -1, -1})
	res := s.Process(withZ)
	require.Equal(t, 1, res.GenMatchedElectrons)
	require.InDelta(t, 2*corr.EWK.Weight(5000), res.Weight, 1e-9)
	require.InDelta(t, 2*0.82, res.Weight, 1e-9)
}

func TestSelectorMET(t *testing.T) {
	config := DefaultConfig()
	config.Inputs = []string{"sim.root"}
	config.IsMC = true
	config.JME = JMEConfig{Mode: "met"}

	s, err := NewSelector(&config, corrections.Defaults(), tlog.NewForTesting(t))
	require.NoError(t, err)

	// all sources of the built-in tables: Total and FlavorQCD
	res := s.Process(simEvent())
	require.Len(t, res.MET, 2*9)
	require.Contains(t, res.MET, "Pt_"+jme.Nominal)
	require.Contains(t, res.MET, "Phi_"+jme.UnclustEnDown)
	require.Len(t, res.JetsByVariation, 7)
	require.Equal(t, 2.0, res.Weight)
}

func TestNewSelectorErrors(t *testing.T) {
	config := DefaultConfig()
	config.IsMC = true
	config.Period = "1999"
	_, err := NewSelector(&config, corrections.Defaults(), tlog.NewForTesting(t))
	require.Error(t, err)

	config = DefaultConfig()
	config.JME = JMEConfig{Mode: "jets", JESSources: []string{"NoSuchSource"}}
	_, err = NewSelector(&config, corrections.Defaults(), tlog.NewForTesting(t))
	require.Error(t, err)
}

func TestUsesBranch(t *testing.T) {
	for _, name := range []string{"nJet", "Jet_pt", "GenPart_statusFlags", "event", "RawMET_phi"} {
		require.True(t, UsesBranch(name), name)
	}
	for _, name := range []string{"Photon_pt", "HLT_Ele32_WPTight_Gsf", "run", "nPhoton"} {
		require.False(t, UsesBranch(name), name)
	}
}

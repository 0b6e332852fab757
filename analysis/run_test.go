package analysis

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ridge/quarry/test"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
)

type objectRow struct {
	pt, eta, phi []float32
}

type eventRow struct {
	electrons objectRow
	muons     objectRow
	jets      objectRow
}

// writeEvents writes a reconstruction-only tree. All objects pass their
// identification.
func writeEvents(t *testing.T, path string, rows []eventRow) {
	f, err := groot.Create(path)
	require.NoError(t, err)

	var (
		nElectron, nMuon, nJet int32
		ele, mu, jet           objectRow
		heep                   []bool
		highPtID               []uint8
		jetID                  []int32
		event                  uint64
	)
	w, err := rtree.NewWriter(f, "Events", []rtree.WriteVar{
		{Name: "nElectron", Value: &nElectron},
		{Name: "Electron_pt", Value: &ele.pt, Count: "nElectron"},
		{Name: "Electron_eta", Value: &ele.eta, Count: "nElectron"},
		{Name: "Electron_phi", Value: &ele.phi, Count: "nElectron"},
		{Name: "Electron_cutBased_HEEP", Value: &heep, Count: "nElectron"},
		{Name: "nMuon", Value: &nMuon},
		{Name: "Muon_pt", Value: &mu.pt, Count: "nMuon"},
		{Name: "Muon_eta", Value: &mu.eta, Count: "nMuon"},
		{Name: "Muon_phi", Value: &mu.phi, Count: "nMuon"},
		{Name: "Muon_highPtId", Value: &highPtID, Count: "nMuon"},
		{Name: "nJet", Value: &nJet},
		{Name: "Jet_pt", Value: &jet.pt, Count: "nJet"},
		{Name: "Jet_eta", Value: &jet.eta, Count: "nJet"},
		{Name: "Jet_phi", Value: &jet.phi, Count: "nJet"},
		{Name: "Jet_jetId", Value: &jetID, Count: "nJet"},
		{Name: "event", Value: &event},
	})
	require.NoError(t, err)

	for i, row := range rows {
		nElectron, nMuon, nJet = int32(len(row.electrons.pt)), int32(len(row.muons.pt)), int32(len(row.jets.pt))
		ele, mu, jet = row.electrons, row.muons, row.jets
		heep = make([]bool, nElectron)
		for j := range heep {
			heep[j] = true
		}
		highPtID = make([]uint8, nMuon)
		for j := range highPtID {
			highPtID[j] = 2
		}
		jetID = make([]int32, nJet)
		for j := range jetID {
			jetID[j] = 6
		}
		event = uint64(i + 1)
		_, err := w.Write()
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

var fileRows = []eventRow{
	// two leptons, one jet
	{
		electrons: objectRow{pt: []float32{120}, eta: []float32{0.5}, phi: []float32{0}},
		muons:     objectRow{pt: []float32{200}, eta: []float32{-1}, phi: []float32{2}},
		jets:      objectRow{pt: []float32{118, 60}, eta: []float32{0.5, -1}, phi: []float32{3, 2.05}},
	},
	// one soft muon, two jets
	{
		muons: objectRow{pt: []float32{20}, eta: []float32{0}, phi: []float32{0}},
		jets:  objectRow{pt: []float32{90, 80}, eta: []float32{0, 1}, phi: []float32{1, -2}},
	},
	// one electron, no jets
	{
		electrons: objectRow{pt: []float32{70}, eta: []float32{-2}, phi: []float32{1}},
	},
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.root")
	b := filepath.Join(dir, "b.root")
	writeEvents(t, a, fileRows)
	writeEvents(t, b, fileRows)

	config := DefaultConfig()
	config.Inputs = []string{b, a}
	config.Workers = 1
	require.NoError(t, config.Validate())

	summary, err := Run(test.ContextWithTimeout(t, time.Minute), &config)
	require.NoError(t, err)

	require.NotEmpty(t, summary.RunID)
	require.Equal(t, []string{a, b}, summary.Files)
	require.Equal(t, int64(6), summary.Events)
	require.Equal(t, 6.0, summary.SumWeights)
	require.Equal(t, int64(4), summary.OneLepton)
	require.Equal(t, int64(2), summary.TwoLeptons)
	require.Equal(t, int64(4), summary.Electrons)
	require.Equal(t, int64(2), summary.Muons)
	require.Equal(t, int64(6), summary.Jets)
	require.Equal(t, map[int]int64{0: 2, 1: 2, 2: 2}, summary.JetMultiplicity)

	out := filepath.Join(dir, "summary.yaml")
	require.NoError(t, summary.WriteFile(out))
	read, err := ReadSummary(out)
	require.NoError(t, err)
	require.Equal(t, summary, read)
}

func TestRunMaxEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.root")
	writeEvents(t, path, fileRows)

	config := DefaultConfig()
	config.Inputs = []string{path}
	config.MaxEvents = 1

	summary, err := Run(test.Context(t), &config)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.Events)
	require.Equal(t, int64(1), summary.TwoLeptons)
}

func TestRunErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.root")
	writeEvents(t, path, fileRows)

	config := DefaultConfig()
	config.Inputs = []string{path, filepath.Join(t.TempDir(), "missing.root")}
	_, err := Run(test.Context(t), &config)
	require.Error(t, err)

	config = DefaultConfig()
	config.Inputs = []string{path}
	config.Tree = "Runs"
	_, err = Run(test.Context(t), &config)
	require.Error(t, err)

	config = DefaultConfig()
	config.Inputs = []string{path}
	config.Corrections = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Run(test.Context(t), &config)
	require.Error(t, err)
}

func TestSummaryMerge(t *testing.T) {
	a := NewSummary()
	a.Files = []string{"b.root"}
	a.Add(EventResult{Electrons: 2, Jets: 1, Weight: 0.5, JetsByVariation: map[string]int{"nominal": 1}})
	a.Add(EventResult{Muons: 1, Weight: 1.5, MET: map[string]float64{"Pt_nominal": 30, "Phi_nominal": 1}})

	b := NewSummary()
	b.Files = []string{"a.root"}
	b.Add(EventResult{Jets: 1, Weight: 1, JetsByVariation: map[string]int{"nominal": 1, "jerup": 2}})

	a.Merge(b)
	require.Equal(t, []string{"a.root", "b.root"}, a.Files)
	require.Equal(t, int64(3), a.Events)
	require.Equal(t, 3.0, a.SumWeights)
	require.Equal(t, int64(2), a.OneLepton)
	require.Equal(t, int64(1), a.TwoLeptons)
	require.Equal(t, map[int]int64{0: 1, 1: 2}, a.JetMultiplicity)
	require.Equal(t, map[string]int64{"nominal": 2, "jerup": 2}, a.JetsByVariation)
	require.Equal(t, []string{"jerup", "nominal"}, a.Variations())
	require.Equal(t, map[string]float64{"nominal": 30}, a.SumMET)
	require.NotEqual(t, a.RunID, b.RunID)
}

package corrections

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	tab, err := NewTable([]float64{0, 1, 3}, []float64{10, 20})
	require.NoError(t, err)
	require.Equal(t, 2, tab.Len())

	require.Equal(t, -1, tab.Bin(-0.5))
	require.Equal(t, 0, tab.Bin(0))
	require.Equal(t, 1, tab.Bin(1))
	require.Equal(t, 2, tab.Bin(3))

	require.Equal(t, 0.0, tab.Lookup(-1))
	require.Equal(t, 10.0, tab.Lookup(0.5))
	require.Equal(t, 20.0, tab.Lookup(2.9))
	require.Equal(t, 0.0, tab.Lookup(3))

	require.Equal(t, 10.0, tab.LookupClamped(-1))
	require.Equal(t, 20.0, tab.LookupClamped(100))
}

func TestTableInvalid(t *testing.T) {
	_, err := NewTable([]float64{0}, nil)
	require.Error(t, err)
	_, err = NewTable([]float64{0, 1}, []float64{1, 2})
	require.Error(t, err)
	_, err = NewTable([]float64{0, 2, 1}, []float64{1, 2})
	require.Error(t, err)
}

func TestDYNJet(t *testing.T) {
	d, err := NewDYNJet("2018")
	require.NoError(t, err)
	require.Equal(t, "2018", d.Period())
	require.InDelta(t, 0.934070, d.Weight(2), 1e-9)
	require.InDelta(t, 1.147625, d.Weight(3), 1e-9)
	require.InDelta(t, 2.780355, d.Weight(6), 1e-9)
	require.InDelta(t, 2.780355, d.Weight(500), 1e-9)
	require.Equal(t, 1.0, d.Weight(0))

	d, err = NewDYNJet("2016pre")
	require.NoError(t, err)
	require.InDelta(t, 3.597194, d.Weight(6), 1e-9)

	_, err = NewDYNJet("2019")
	require.Error(t, err)
	require.Equal(t, []string{"2016post", "2016pre", "2017", "2018"}, Periods())
}

func TestDefaults(t *testing.T) {
	set := Defaults()
	require.Equal(t, []string{"FlavorQCD", "Total"}, set.JES.Sources())
	require.True(t, set.JES.Has("Total"))
	require.False(t, set.JES.Has("Absolute"))
	require.InDelta(t, 0.015, set.JES.Uncertainty("Total", 0.2), 1e-9)
	require.InDelta(t, 0.045, set.JES.Uncertainty("Total", -4), 1e-9)
	require.Panics(t, func() { set.JES.Uncertainty("Absolute", 0) })

	require.InDelta(t, 1.150, set.JERScaleFactors.ScaleFactor(0.1, Nominal), 1e-9)
	require.InDelta(t, 1.150, set.JERScaleFactors.ScaleFactor(-0.1, Nominal), 1e-9)
	require.InDelta(t, 1.193, set.JERScaleFactors.ScaleFactor(0.1, Up), 1e-9)
	require.InDelta(t, 1.015, set.JERScaleFactors.ScaleFactor(6, Down), 1e-9)
	require.Panics(t, func() { set.JERScaleFactors.ScaleFactor(0, "sideways") })

	require.InDelta(t, 1.0, set.EWK.Weight(50), 1e-9)
	require.InDelta(t, 0.82, set.EWK.Weight(5000), 1e-9)
}

func TestPtResolution(t *testing.T) {
	res := Defaults().PtResolution
	got := res.Resolution(100, 0.2, 0)
	want := math.Sqrt(2.8*2.8/1e4 + 0.95*0.95/100 + 0.035*0.035)
	require.InDelta(t, want, got, 1e-12)

	// frozen below 15 GeV
	require.Equal(t, res.Resolution(15, 0.2, 0), res.Resolution(5, 0.2, 0))
	// pile-up adds noise
	require.Greater(t, res.Resolution(30, 0.2, 40), res.Resolution(30, 0.2, 0))
	// resolution improves with pt
	require.Greater(t, res.Resolution(30, 1, 10), res.Resolution(300, 1, 10))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.yaml")
	require.NoError(t, os.WriteFile(path, defaultsYAML, 0o600))
	set, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, Defaults().JES.Sources(), set.JES.Sources())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(strings.NewReader("bogus: 1\n"))
	require.Error(t, err)

	bad := strings.Replace(string(defaultsYAML), "nom: [1.150, 1.134, 1.102, 1.134, 1.350, 1.100]", "nom: [1.150]", 1)
	_, err = Load(strings.NewReader(bad))
	require.ErrorContains(t, err, "jerScaleFactors.nom")
}

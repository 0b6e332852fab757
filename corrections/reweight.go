package corrections

import (
	"fmt"

	"github.com/ridge/must/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var dyNJetEdges = []float64{1.5, 2.5, 3.5, 4.5, 5.5, 100.0}

var dyNJetContents = map[string][]float64{
	"2016pre":  {0.878685, 1.135846, 1.454879, 2.026025, 3.597194},
	"2016post": {0.937645, 1.150977, 1.626356, 2.105785, 2.748908},
	"2017":     {0.971482, 1.203601, 1.586480, 2.066689, 2.751360},
	"2018":     {0.934070, 1.147625, 1.560774, 2.124003, 2.780355},
}

// Periods returns the data-taking periods with built-in tables
func Periods() []string {
	periods := maps.Keys(dyNJetContents)
	slices.Sort(periods)
	return periods
}

// DYNJet reweights Drell-Yan simulation by jet multiplicity
type DYNJet struct {
	period string
	table  *Table
}

// NewDYNJet returns the table of the given data-taking period
func NewDYNJet(period string) (*DYNJet, error) {
	contents, ok := dyNJetContents[period]
	if !ok {
		return nil, fmt.Errorf("no DY n-jet correction for period %q, expected one of %v", period, Periods())
	}
	return &DYNJet{period: period, table: must.OK1(NewTable(dyNJetEdges, contents))}, nil
}

// Period returns the data-taking period of the table
func (d *DYNJet) Period() string {
	return d.period
}

// Weight returns the weight of an event with nJets jets. Multiplicities
// above the table get the last bin; those below it are not reweighted.
// Unlike histogram underflow and overflow bins, neither side yields 0.
func (d *DYNJet) Weight(nJets int) float64 {
	if d.table.Bin(float64(nJets)) < 0 {
		return 1
	}
	return d.table.LookupClamped(float64(nJets))
}

// EWK reweights simulation by the transverse momentum of the generated Z
// boson. The analysis applies it when configured with ewkReweight.
type EWK struct {
	table *Table
}

// NewEWK creates the table from bin edges in GeV and weights
func NewEWK(edges, weights []float64) (*EWK, error) {
	t, err := NewTable(edges, weights)
	if err != nil {
		return nil, fmt.Errorf("invalid EWK table: %w", err)
	}
	return &EWK{table: t}, nil
}

// Weight returns the weight for a generated Z with the given pt. Values
// outside the table get the nearest bin.
// Unlike histogram underflow and overflow bins, neither side yields 0.
func (e *EWK) Weight(genZPt float64) float64 {
	return e.table.LookupClamped(genZPt)
}

package analysis

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Summary aggregates the yields of a run
type Summary struct {
	RunID string   `yaml:"runID"`
	Files []string `yaml:"files"`

	Events     int64   `yaml:"events"`
	SumWeights float64 `yaml:"sumWeights"`

	// Events with at least one and at least two selected leptons
	OneLepton  int64 `yaml:"oneLepton"`
	TwoLeptons int64 `yaml:"twoLeptons"`

	// Selected objects over all events
	Electrons           int64 `yaml:"electrons"`
	Muons               int64 `yaml:"muons"`
	Jets                int64 `yaml:"jets"`
	GenMatchedElectrons int64 `yaml:"genMatchedElectrons,omitempty"`
	ElectronsScaleUp    int64 `yaml:"electronsScaleUp"`
	ElectronsScaleDown  int64 `yaml:"electronsScaleDown"`
	SmearedJets         int64 `yaml:"smearedJets,omitempty"`

	// Number of events by selected jet multiplicity
	JetMultiplicity map[int]int64 `yaml:"jetMultiplicity"`

	// Selected jets over all events by jet variation
	JetsByVariation map[string]int64 `yaml:"jetsByVariation,omitempty"`

	// Sum of the MET over all events by variation
	SumMET map[string]float64 `yaml:"sumMET,omitempty"`
}

// NewSummary returns an empty summary with a fresh run ID
func NewSummary() *Summary {
	return &Summary{
		RunID:           uuid.NewString(),
		JetMultiplicity: map[int]int64{},
	}
}

// Add accounts for one processed event
func (s *Summary) Add(res EventResult) {
	s.Events++
	s.SumWeights += res.Weight

	leptons := res.Electrons + res.Muons
	if leptons >= 1 {
		s.OneLepton++
	}
	if leptons >= 2 {
		s.TwoLeptons++
	}

	s.Electrons += int64(res.Electrons)
	s.Muons += int64(res.Muons)
	s.Jets += int64(res.Jets)
	s.GenMatchedElectrons += int64(res.GenMatchedElectrons)
	s.ElectronsScaleUp += int64(res.ElectronsScaleUp)
	s.ElectronsScaleDown += int64(res.ElectronsScaleDown)
	s.SmearedJets += int64(res.SmearedJets)
	s.JetMultiplicity[res.Jets]++

	for v, n := range res.JetsByVariation {
		if s.JetsByVariation == nil {
			s.JetsByVariation = map[string]int64{}
		}
		s.JetsByVariation[v] += int64(n)
	}
	for k, met := range res.MET {
		v, ok := strings.CutPrefix(k, "Pt_")
		if !ok {
			continue
		}
		if s.SumMET == nil {
			s.SumMET = map[string]float64{}
		}
		s.SumMET[v] += met
	}
}

// Merge adds the counts of other, which must not be used concurrently
func (s *Summary) Merge(other *Summary) {
	s.Files = append(s.Files, other.Files...)
	slices.Sort(s.Files)

	s.Events += other.Events
	s.SumWeights += other.SumWeights
	s.OneLepton += other.OneLepton
	s.TwoLeptons += other.TwoLeptons
	s.Electrons += other.Electrons
	s.Muons += other.Muons
	s.Jets += other.Jets
	s.GenMatchedElectrons += other.GenMatchedElectrons
	s.ElectronsScaleUp += other.ElectronsScaleUp
	s.ElectronsScaleDown += other.ElectronsScaleDown
	s.SmearedJets += other.SmearedJets

	for n, events := range other.JetMultiplicity {
		s.JetMultiplicity[n] += events
	}
	if len(other.JetsByVariation) > 0 && s.JetsByVariation == nil {
		s.JetsByVariation = map[string]int64{}
	}
	for v, n := range other.JetsByVariation {
		s.JetsByVariation[v] += n
	}
	if len(other.SumMET) > 0 && s.SumMET == nil {
		s.SumMET = map[string]float64{}
	}
	for v, met := range other.SumMET {
		s.SumMET[v] += met
	}
}

// Variations returns the sorted names of the jet variations seen
func (s *Summary) Variations() []string {
	names := maps.Keys(s.JetsByVariation)
	slices.Sort(names)
	return names
}

// WriteFile writes the summary as YAML
func (s *Summary) WriteFile(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// ReadSummary reads a summary written by WriteFile
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	s := &Summary{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode summary %s: %w", path, err)
	}
	if s.JetMultiplicity == nil {
		s.JetMultiplicity = map[int]int64{}
	}
	return s, nil
}

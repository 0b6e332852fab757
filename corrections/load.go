package corrections

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/ridge/must/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Set is the complete set of tables an analysis uses
type Set struct {
	PtResolution    *PtResolution
	JERScaleFactors *JERScaleFactors
	JES             *JESUncertainty
	EWK             *EWK
}

type binnedFile struct {
	EtaEdges []float64 `yaml:"etaEdges"`
	Values   []float64 `yaml:"values"`
}

type file struct {
	PtResolution struct {
		EtaEdges []float64 `yaml:"etaEdges"`
		N        []float64 `yaml:"n"`
		S        []float64 `yaml:"s"`
		C        []float64 `yaml:"c"`
		NRho     float64   `yaml:"nRho"`
	} `yaml:"ptResolution"`
	JERScaleFactors struct {
		EtaEdges []float64 `yaml:"etaEdges"`
		Nom      []float64 `yaml:"nom"`
		Up       []float64 `yaml:"up"`
		Down     []float64 `yaml:"down"`
	} `yaml:"jerScaleFactors"`
	JES map[string]binnedFile `yaml:"jes"`
	EWK struct {
		Edges  []float64 `yaml:"edges"`
		Values []float64 `yaml:"values"`
	} `yaml:"ewk"`
}

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the built-in tables
func Defaults() *Set {
	return must.OK1(Load(bytes.NewReader(defaultsYAML)))
}

// LoadFile reads tables from a YAML file
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corrections: %w", err)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections from %s: %w", path, err)
	}
	return set, nil
}

// Load reads tables in YAML format
func Load(r io.Reader) (*Set, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode corrections: %w", err)
	}

	var set Set
	var err error

	res := f.PtResolution
	set.PtResolution = &PtResolution{nRho: res.NRho}
	if set.PtResolution.n, err = NewTable(res.EtaEdges, res.N); err != nil {
		return nil, fmt.Errorf("ptResolution.n: %w", err)
	}
	if set.PtResolution.s, err = NewTable(res.EtaEdges, res.S); err != nil {
		return nil, fmt.Errorf("ptResolution.s: %w", err)
	}
	if set.PtResolution.c, err = NewTable(res.EtaEdges, res.C); err != nil {
		return nil, fmt.Errorf("ptResolution.c: %w", err)
	}

	jer := f.JERScaleFactors
	set.JERScaleFactors = &JERScaleFactors{byVariation: map[string]*Table{}}
	for variation, values := range map[string][]float64{Nominal: jer.Nom, Up: jer.Up, Down: jer.Down} {
		t, err := NewTable(jer.EtaEdges, values)
		if err != nil {
			return nil, fmt.Errorf("jerScaleFactors.%s: %w", variation, err)
		}
		set.JERScaleFactors.byVariation[variation] = t
	}

	set.JES = &JESUncertainty{sources: map[string]*Table{}}
	sources := maps.Keys(f.JES)
	slices.Sort(sources)
	for _, source := range sources {
		t, err := NewTable(f.JES[source].EtaEdges, f.JES[source].Values)
		if err != nil {
			return nil, fmt.Errorf("jes.%s: %w", source, err)
		}
		set.JES.sources[source] = t
	}

	if set.EWK, err = NewEWK(f.EWK.Edges, f.EWK.Values); err != nil {
		return nil, err
	}
	return &set, nil
}

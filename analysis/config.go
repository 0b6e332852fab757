// Package analysis runs an object selection over event files: it builds the
// physics object collections of every event, applies the configured
// selections and corrections, and summarizes the yields.
package analysis

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ridge/quarry"
	"gopkg.in/yaml.v3"
)

// Config is the analysis configuration, usually read from a YAML file
type Config struct {
	Tree   string   `yaml:"tree" validate:"required"`
	Inputs []string `yaml:"inputs" validate:"required,min=1,dive,required"`
	IsMC   bool     `yaml:"isMC"`

	// Period selects the DY n-jet reweighting table (simulation only)
	Period string `yaml:"period" validate:"omitempty,oneof=2016pre 2016post 2017 2018"`

	// EWKReweight weights simulated events by the pt of the generated Z
	// from the hard process
	EWKReweight bool `yaml:"ewkReweight"`

	// Corrections is a YAML corrections file; the built-in tables are used
	// if empty
	Corrections string `yaml:"corrections"`

	Workers   int   `yaml:"workers" validate:"gte=0"`
	MaxEvents int64 `yaml:"maxEvents" validate:"gte=-1"`

	Electrons ElectronConfig `yaml:"electrons"`
	Muons     MuonConfig     `yaml:"muons"`
	Jets      JetConfig      `yaml:"jets"`
	GenMatch  GenMatchConfig `yaml:"genMatch"`
	Smearing  SmearConfig    `yaml:"smearing"`
	JME       JMEConfig      `yaml:"jme"`
}

// ElectronConfig selects electrons
type ElectronConfig struct {
	ID        quarry.ID `yaml:"id"`
	MinPtHeep float64   `yaml:"minPtHeep" validate:"gte=0"`
	MaxAbsEta float64   `yaml:"maxAbsEta" validate:"gt=0"`
}

// MuonConfig selects muons
type MuonConfig struct {
	ID        quarry.ID `yaml:"id"`
	MinPt     float64   `yaml:"minPt" validate:"gte=0"`
	MaxAbsEta float64   `yaml:"maxAbsEta" validate:"gt=0"`
}

// JetConfig selects jets. Jets closer than LeptonVetoDR to a selected lepton
// are removed.
type JetConfig struct {
	ID           quarry.ID `yaml:"id"`
	MinPt        float64   `yaml:"minPt" validate:"gte=0"`
	MaxAbsEta    float64   `yaml:"maxAbsEta" validate:"gt=0"`
	LeptonVetoDR float64   `yaml:"leptonVetoDR" validate:"gte=0"`
}

// GenMatchConfig configures the matching of selected electrons to
// generator electrons
type GenMatchConfig struct {
	ID    quarry.ID `yaml:"id"`
	MaxDR float64   `yaml:"maxDR" validate:"gt=0"`
}

// SmearConfig configures jet energy resolution smearing of simulation
type SmearConfig struct {
	Enabled   bool    `yaml:"enabled"`
	MaxDR     float64 `yaml:"maxDR" validate:"gt=0"`
	Variation string  `yaml:"variation" validate:"oneof=nom up down"`
}

// JMEConfig configures jet/MET systematic variations
type JMEConfig struct {
	// Mode is empty (no variations), jets or met
	Mode       string   `yaml:"mode" validate:"omitempty,oneof=jets met"`
	JESSources []string `yaml:"jesSources"`
}

// DefaultConfig returns the configuration values used where the file is
// silent
func DefaultConfig() Config {
	return Config{
		Tree:      "Events",
		MaxEvents: -1,
		Electrons: ElectronConfig{ID: quarry.EleHEEP, MinPtHeep: 50, MaxAbsEta: 2.5},
		Muons:     MuonConfig{ID: quarry.MuonHighPtGlobal, MinPt: 53, MaxAbsEta: 2.4},
		Jets:      JetConfig{ID: quarry.JetTightLepVeto, MinPt: 50, MaxAbsEta: 2.4, LeptonVetoDR: 0.3},
		GenMatch:  GenMatchConfig{ID: quarry.GenEleHardScatter, MaxDR: 0.1},
		Smearing:  SmearConfig{MaxDR: 0.2, Variation: "nom"},
	}
}

var validate = validator.New()

// ParseConfig reads a YAML configuration on top of DefaultConfig and
// validates it
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfig reads the configuration file at path
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

package analysis

import (
	"fmt"
	"strings"

	"github.com/ridge/quarry"
	"github.com/ridge/quarry/corrections"
	"github.com/ridge/quarry/jme"
	"github.com/ridge/quarry/objects"
	"github.com/ridge/quarry/rng"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Branches the selection reads, by name prefix and by name
var (
	branchPrefixes = []string{"Electron_", "Muon_", "Jet_", "GenPart_", "GenJet_", "CorrT1METJet_", "RawMET_", "MET_"}
	branchNames    = map[string]bool{
		"nElectron": true, "nMuon": true, "nJet": true, "nGenPart": true, "nGenJet": true, "nCorrT1METJet": true,
		"event": true, "genWeight": true, "fixedGridRhoFastjetAll": true,
	}
)

// UsesBranch tells whether the selection reads the branch
func UsesBranch(name string) bool {
	if branchNames[name] {
		return true
	}
	for _, prefix := range branchPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// EventResult is the outcome of the selection of one event
type EventResult struct {
	Electrons int
	Muons     int
	Jets      int

	// Selected electrons matched to a generator electron (simulation only)
	GenMatchedElectrons int

	// Electrons surviving an energy scale shift up and down
	ElectronsScaleUp   int
	ElectronsScaleDown int

	// Jets passing the pt threshold after smearing (simulation only), and
	// the MET change smearing causes
	SmearedJets int
	SmearMET    float64

	// Jets passing the pt threshold for every jet variation
	JetsByVariation map[string]int

	// Type-1 MET variations as Pt_<variation> and Phi_<variation>
	MET map[string]float64

	Weight float64
}

// Selector applies the configured selection to events. It is not safe for
// concurrent use; each worker needs its own.
type Selector struct {
	config *Config
	corr   *corrections.Set
	dy     *corrections.DYNJet
	jets   *jme.Coordinator
	met    *jme.Coordinator
	engine *rng.Gaussian
	logger *zap.Logger
}

// NewSelector creates a selector
func NewSelector(config *Config, corr *corrections.Set, logger *zap.Logger) (*Selector, error) {
	s := &Selector{config: config, corr: corr, engine: rng.New(0), logger: logger}

	if config.IsMC && config.Period != "" {
		dy, err := corrections.NewDYNJet(config.Period)
		if err != nil {
			return nil, err
		}
		s.dy = dy
	}

	tablesConfig := jme.TablesConfig{JESSources: config.JME.JESSources}
	switch config.JME.Mode {
	case "":
	case jme.ModeJets.String():
		calc, err := jme.NewTables(corr, tablesConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create jet variations calculator: %w", err)
		}
		s.jets = jme.NewJetCoordinator(calc)
	case jme.ModeMET.String():
		calc, err := jme.NewMETTables(corr, tablesConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create MET variations calculator: %w", err)
		}
		s.met = jme.NewMETCoordinator(calc)
		// jet variations are needed for the per-variation jet counts
		jetCalc, err := jme.NewTables(corr, tablesConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create jet variations calculator: %w", err)
		}
		s.jets = jme.NewJetCoordinator(jetCalc)
	default:
		return nil, fmt.Errorf("unknown JME mode %q", config.JME.Mode)
	}
	return s, nil
}

func size(b quarry.Branches, counter, array string) int {
	if b.HasBranch(counter) {
		return int(b.Int(counter))
	}
	if b.HasBranch(array) {
		return b.Len(array)
	}
	return 0
}

// Process selects the objects of the event b currently points to
func (s *Selector) Process(b quarry.Branches) EventResult {
	cfg := s.config
	verbose := s.logger.Core().Enabled(zapcore.DebugLevel)
	res := EventResult{Weight: 1}

	electrons := quarry.New(b, size(b, "nElectron", "Electron_pt"))
	electrons = quarry.SkimByID(electrons, objects.NewElectron, cfg.Electrons.ID)
	electrons = quarry.SkimByMinPtHeep(electrons, objects.NewElectron, cfg.Electrons.MinPtHeep)
	electrons = quarry.SkimByMaxAbsEta(electrons, objects.NewElectron, cfg.Electrons.MaxAbsEta)
	electrons = quarry.RemoveDuplicates(electrons, objects.NewElectron)
	res.Electrons = electrons.Size()

	muons := quarry.New(b, size(b, "nMuon", "Muon_pt"))
	muons = quarry.SkimByID(muons, objects.NewMuon, cfg.Muons.ID)
	muons = quarry.SkimByMinPt(muons, objects.NewMuon, cfg.Muons.MinPt)
	muons = quarry.SkimByMaxAbsEta(muons, objects.NewMuon, cfg.Muons.MaxAbsEta)
	res.Muons = muons.Size()

	jets := quarry.New(b, size(b, "nJet", "Jet_pt"))
	jets = quarry.SkimByID(jets, objects.NewJet, cfg.Jets.ID)
	jets = quarry.SkimByMaxAbsEta(jets, objects.NewJet, cfg.Jets.MaxAbsEta)
	jets = quarry.SkimByVetoDRMatch(jets, objects.NewJet, electrons, objects.NewElectron, cfg.Jets.LeptonVetoDR)
	jets = quarry.SkimByVetoDRMatch(jets, objects.NewJet, muons, objects.NewMuon, cfg.Jets.LeptonVetoDR)

	var genJets *quarry.Collection
	if cfg.IsMC {
		genJets = quarry.New(b, size(b, "nGenJet", "GenJet_pt"))
	}

	if s.jets != nil {
		if err := s.jets.ComputeJetVariations(jets, genJets, cfg.IsMC); err != nil {
			panic(err)
		}
		res.JetsByVariation = map[string]int{}
		for _, v := range s.jets.Available() {
			res.JetsByVariation[v] = quarry.Skim(jets, objects.NewJet, func(j *objects.Jet) bool {
				return j.PtVariation(v) >= cfg.Jets.MinPt
			}).Size()
		}
	}
	if s.met != nil {
		met, err := s.met.ComputeType1METVariations(jets, genJets, cfg.IsMC)
		if err != nil {
			panic(err)
		}
		res.MET = met
	}

	jetsBeforePt := jets
	jets = quarry.SkimByMinPt(jets, objects.NewJet, cfg.Jets.MinPt)
	res.Jets = jets.Size()

	var scaleUp, scaleDown quarry.METDelta
	res.ElectronsScaleUp = len(quarry.ScaleEnergy(electrons, objects.NewElectron, +1, &scaleUp))
	res.ElectronsScaleDown = len(quarry.ScaleEnergy(electrons, objects.NewElectron, -1, &scaleDown))

	if cfg.IsMC {
		genParticles := quarry.New(b, size(b, "nGenPart", "GenPart_pt"))
		genElectrons := quarry.SkimByID(genParticles, objects.NewGenParticle, cfg.GenMatch.ID)
		matched := quarry.SkimByRequireDRMatch(electrons, objects.NewElectron, genElectrons, objects.NewGenParticle, cfg.GenMatch.MaxDR)
		res.GenMatchedElectrons = quarry.HasHowMany(electrons, matched)

		if cfg.Smearing.Enabled {
			s.engine.Seed(b.Uint("event"))
			var delta quarry.METDelta
			smeared := quarry.MatchAndSmearEnergy(jetsBeforePt, objects.NewJet, genJets, objects.NewGenJet, quarry.SmearOptions{
				MaxDR:        cfg.Smearing.MaxDR,
				Resolution:   s.corr.PtResolution,
				ScaleFactors: s.corr.JERScaleFactors,
				Variation:    cfg.Smearing.Variation,
				Logger:       s.logger,
			}, s.engine, &delta)
			for _, j := range smeared {
				if j.Pt() >= cfg.Jets.MinPt {
					res.SmearedJets++
				}
			}
			res.SmearMET = delta.Pt()
		}

		if b.HasBranch("genWeight") {
			res.Weight = b.Value("genWeight")
		}
		if s.dy != nil {
			res.Weight *= s.dy.Weight(jets.Size())
		}
		if cfg.EWKReweight {
			if z := quarry.SkimByID(genParticles, objects.NewGenParticle, quarry.GenZFromHardProcessLastCopy); z.Size() > 0 {
				res.Weight *= s.corr.EWK.Weight(objects.NewGenParticle(z, z.RawIndices()[0]).Pt())
			}
		}
	}

	if verbose {
		quarry.Examine(s.logger, electrons, objects.NewElectron, "electrons", cfg.Electrons.ID)
		quarry.Examine(s.logger, muons, objects.NewMuon, "muons", cfg.Muons.ID)
		quarry.Examine(s.logger, jets, objects.NewJet, "jets", cfg.Jets.ID)
	}
	return res
}

package jme

import (
	"fmt"
	"math"

	"github.com/ridge/quarry/corrections"
	"github.com/ridge/quarry/rng"
	"go-hep.org/x/hep/fmom"
	"golang.org/x/exp/slices"
)

// Variation names. JES variations are named jes<source>up and
// jes<source>down.
const (
	Nominal       = "nominal"
	JERUp         = "jerup"
	JERDown       = "jerdown"
	UnclustEnUp   = "unclustEnup"
	UnclustEnDown = "unclustEndown"
)

const (
	jesPrefix  = "jes"
	upSuffix   = "up"
	downSuffix = "down"

	// position of the first JES variation in Available
	firstJES = 3

	defaultMaxDR    = 0.2
	defaultMaxDPt   = 3
	defaultUnclEn   = 15
	defaultEMEnFrac = 0.9
)

// TablesConfig configures Tables
type TablesConfig struct {
	// JESSources are the uncertainty sources to vary, all sources of the
	// tables if empty
	JESSources []string

	// GenMatchMaxDR is the generator match cone diameter, 0.2 if zero
	GenMatchMaxDR float64

	// GenMatchMaxDPt is the maximal |Δpt| of a generator match in units of
	// resolution, 3 if zero
	GenMatchMaxDPt float64

	// UnclEnThreshold is the minimal corrected muon-subtracted pt of a jet
	// entering type-1 MET, 15 GeV if zero
	UnclEnThreshold float64

	// EMEnFracThreshold is the electromagnetic energy fraction at and above
	// which a jet does not enter type-1 MET, 0.9 if zero
	EMEnFracThreshold float64
}

// Tables is a JetCalculator working on correction tables: JER by the hybrid
// method, JES from per-source relative uncertainties.
//
// For data (no generator information) all JER factors are 1.
type Tables struct {
	res     *corrections.PtResolution
	sf      *corrections.JERScaleFactors
	jes     *corrections.JESUncertainty
	sources []string
	config  TablesConfig
}

// NewTables creates a calculator from a correction set
func NewTables(set *corrections.Set, config TablesConfig) (*Tables, error) {
	sources := config.JESSources
	if len(sources) == 0 {
		sources = set.JES.Sources()
	}
	for _, s := range sources {
		if !set.JES.Has(s) {
			return nil, fmt.Errorf("unknown JES source %q, expected one of %v", s, set.JES.Sources())
		}
	}
	if config.GenMatchMaxDR == 0 {
		config.GenMatchMaxDR = defaultMaxDR
	}
	if config.GenMatchMaxDPt == 0 {
		config.GenMatchMaxDPt = defaultMaxDPt
	}
	if config.UnclEnThreshold == 0 {
		config.UnclEnThreshold = defaultUnclEn
	}
	if config.EMEnFracThreshold == 0 {
		config.EMEnFracThreshold = defaultEMEnFrac
	}
	return &Tables{
		res:     set.PtResolution,
		sf:      set.JERScaleFactors,
		jes:     set.JES,
		sources: slices.Clone(sources),
		config:  config,
	}, nil
}

// Available implements JetCalculator
func (t *Tables) Available() []string {
	names := []string{Nominal, JERUp, JERDown}
	for _, s := range t.sources {
		names = append(names, jesPrefix+s+upSuffix, jesPrefix+s+downSuffix)
	}
	return names
}

// ProduceJets implements JetCalculator
func (t *Tables) ProduceJets(args JetArgs) JetResult {
	factors := t.factors(&args)
	res := JetResult{Pt: make([][]float64, len(factors)), Mass: make([][]float64, len(factors))}
	for v, f := range factors {
		res.Pt[v] = make([]float64, len(args.Pt))
		res.Mass[v] = make([]float64, len(args.Pt))
		for i := range args.Pt {
			res.Pt[v][i] = args.Pt[i] * f[i]
			res.Mass[v][i] = args.Mass[i] * f[i]
		}
	}
	return res
}

// factors returns the pt scale factor of every jet for every variation in
// the order of Available
func (t *Tables) factors(args *JetArgs) [][]float64 {
	n := len(args.Pt)
	nom := make([]float64, n)
	up := make([]float64, n)
	down := make([]float64, n)
	engine := rng.New(args.Seed)
	for i := 0; i < n; i++ {
		if !args.IsMC() {
			nom[i], up[i], down[i] = 1, 1, 1
			continue
		}
		nom[i], up[i], down[i] = t.jer(args, i, engine)
	}

	factors := [][]float64{nom, up, down}
	for _, s := range t.sources {
		jesUp := make([]float64, n)
		jesDown := make([]float64, n)
		for i := 0; i < n; i++ {
			u := t.jes.Uncertainty(s, args.Eta[i])
			jesUp[i] = nom[i] * (1 + u)
			jesDown[i] = nom[i] * math.Max(0, 1-u)
		}
		factors = append(factors, jesUp, jesDown)
	}
	return factors
}

// jer returns the nominal, up and down resolution smearing factors of jet i.
// One random draw serves all three.
func (t *Tables) jer(args *JetArgs, i int, engine *rng.Gaussian) (nom, up, down float64) {
	pt, eta := args.Pt[i], args.Eta[i]
	res := t.res.Resolution(pt, eta, args.Rho)

	genPt, matched := t.genMatch(args, i, res)
	var draw float64
	if !matched {
		draw = engine.Gaus(0, res)
	}
	factor := func(variation string) float64 {
		sf := t.sf.ScaleFactor(eta, variation)
		var f float64
		if matched {
			f = 1 + (sf-1)*(pt-genPt)/pt
		} else {
			sf = math.Max(sf, 0)
			f = 1 + draw*math.Sqrt(math.Max(sf*sf-1, 0))
		}
		return math.Max(f, 0)
	}
	return factor(corrections.Nominal), factor(corrections.Up), factor(corrections.Down)
}

func (t *Tables) genMatch(args *JetArgs, i int, res float64) (float64, bool) {
	g := args.GenJetIdx[i]
	if g < 0 || g >= len(args.GenJetPt) {
		return 0, false
	}
	jet := fmom.NewPtEtaPhiM(args.Pt[i], args.Eta[i], args.Phi[i], 0)
	gen := fmom.NewPtEtaPhiM(args.GenJetPt[g], args.GenJetEta[g], args.GenJetPhi[g], 0)
	if fmom.DeltaR(&jet, &gen) >= t.config.GenMatchMaxDR/2 {
		return 0, false
	}
	if math.Abs(args.Pt[i]-args.GenJetPt[g]) >= t.config.GenMatchMaxDPt*res*args.Pt[i] {
		return 0, false
	}
	return args.GenJetPt[g], true
}

// METTables is the METCalculator counterpart of Tables. Its variations are
// those of Tables plus the unclustered energy ones.
type METTables struct {
	*Tables
}

// NewMETTables creates a MET calculator from a correction set
func NewMETTables(set *corrections.Set, config TablesConfig) (*METTables, error) {
	t, err := NewTables(set, config)
	if err != nil {
		return nil, err
	}
	return &METTables{Tables: t}, nil
}

// Available implements METCalculator
func (t *METTables) Available() []string {
	return append(t.Tables.Available(), UnclustEnUp, UnclustEnDown)
}

// ProduceMET implements METCalculator.
//
// For every jet variation MET = raw MET - Σ(p_var - p_raw) over jets whose
// corrected muon-subtracted pt exceeds UnclEnThreshold and whose
// electromagnetic fraction is below EMEnFracThreshold. Jets below the
// analysis threshold contribute their JES shifts only. Unclustered
// variations shift the nominal MET by ±(ΔX, ΔY).
func (t *METTables) ProduceMET(args METArgs) METResult {
	factors := t.factors(&args.JetArgs)
	rawX := args.RawMETPt * math.Cos(args.RawMETPhi)
	rawY := args.RawMETPt * math.Sin(args.RawMETPhi)

	var res METResult
	add := func(x, y float64) {
		res.Pt = append(res.Pt, math.Hypot(x, y))
		res.Phi = append(res.Phi, math.Atan2(y, x))
	}

	var nomX, nomY float64
	for v, f := range factors {
		x, y := rawX, rawY
		for i := range args.Pt {
			if args.NeEmEF[i]+args.ChEmEF[i] >= t.config.EMEnFracThreshold {
				continue
			}
			noMu := 1 - args.MuonSubtrFactor[i]
			rawNoMu := args.Pt[i] * (1 - args.RawFactor[i]) * noMu
			corrNoMu := args.Pt[i] * f[i] * noMu
			if corrNoMu <= t.config.UnclEnThreshold {
				continue
			}
			x -= (corrNoMu - rawNoMu) * math.Cos(args.Phi[i])
			y -= (corrNoMu - rawNoMu) * math.Sin(args.Phi[i])
		}
		if v >= firstJES {
			x, y = t.lowPtJES(&args, v, x, y)
		}
		if v == 0 {
			nomX, nomY = x, y
		}
		add(x, y)
	}

	add(nomX+args.UnclustEnUpDeltaX, nomY+args.UnclustEnUpDeltaY)
	add(nomX-args.UnclustEnUpDeltaX, nomY-args.UnclustEnUpDeltaY)
	return res
}

// lowPtJES applies the JES shift of variation v (an index into Available)
// of the jets below the analysis threshold
func (t *METTables) lowPtJES(args *METArgs, v int, x, y float64) (float64, float64) {
	source := t.sources[(v-firstJES)/2]
	sign := 1.0
	if (v-firstJES)%2 == 1 {
		sign = -1
	}
	for i := range args.LowPtRawPt {
		noMu := args.LowPtRawPt[i] * (1 - args.LowPtMuonSubtrFactor[i])
		shift := sign * t.jes.Uncertainty(source, args.LowPtEta[i]) * noMu
		if noMu+shift <= t.config.UnclEnThreshold {
			continue
		}
		x -= shift * math.Cos(args.LowPtPhi[i])
		y -= shift * math.Sin(args.LowPtPhi[i])
	}
	return x, y
}

package quarry

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// minKeptPt is the transverse momentum below which scaled or smeared objects
// are dropped
const minKeptPt = 1e-6

// METDelta accumulates the change of missing transverse momentum caused by
// modifying object energies: the sum of (old - new) four-momenta.
//
// The zero value is an empty accumulator.
type METDelta struct {
	p4 fmom.PxPyPzE
}

// Add accumulates before - after
func (m *METDelta) Add(before, after fmom.PtEtaPhiM) {
	m.p4 = fmom.NewPxPyPzE(
		m.p4.Px()+before.Px()-after.Px(),
		m.p4.Py()+before.Py()-after.Py(),
		m.p4.Pz()+before.Pz()-after.Pz(),
		m.p4.E()+before.E()-after.E(),
	)
}

// Merge adds the contents of another accumulator
func (m *METDelta) Merge(other METDelta) {
	m.p4 = fmom.NewPxPyPzE(
		m.p4.Px()+other.p4.Px(),
		m.p4.Py()+other.p4.Py(),
		m.p4.Pz()+other.p4.Pz(),
		m.p4.E()+other.p4.E(),
	)
}

// Px returns the x component of the accumulated change
func (m *METDelta) Px() float64 { return m.p4.Px() }

// Py returns the y component of the accumulated change
func (m *METDelta) Py() float64 { return m.p4.Py() }

// Pt returns the transverse magnitude of the accumulated change
func (m *METDelta) Pt() float64 { return math.Hypot(m.p4.Px(), m.p4.Py()) }

// Phi returns the azimuth of the accumulated change
func (m *METDelta) Phi() float64 { return math.Atan2(m.p4.Py(), m.p4.Px()) }

// P4 returns the accumulated four-momentum
func (m *METDelta) P4() fmom.PxPyPzE { return m.p4 }

// ScaleEnergy returns views of all constituents with Pt scaled by
// 1 + sign*EnergyScaleFactor(), dropping objects whose scaled Pt falls below
// 1e-6. The change of every object is accumulated into delta.
func ScaleEnergy[O Scalable](c *Collection, kind Kind[O], sign int, delta *METDelta) []O {
	return ScaleObjects(Constituents(c, kind), sign, delta)
}

// ScaleObjects is ScaleEnergy applied to already materialized views. The
// views are modified.
func ScaleObjects[O Scalable](objs []O, sign int, delta *METDelta) []O {
	scaled := make([]O, 0, len(objs))
	for _, o := range objs {
		oldPt := o.Pt()
		newPt := math.Max(0, oldPt*(1+float64(sign)*o.EnergyScaleFactor()))
		delta.Add(fmom.NewPtEtaPhiM(oldPt, o.Eta(), o.Phi(), 0), fmom.NewPtEtaPhiM(newPt, o.Eta(), o.Phi(), 0))
		o.SetPt(newPt)
		if newPt >= minKeptPt {
			scaled = append(scaled, o)
		}
	}
	return scaled
}

// SmearOptions configures MatchAndSmearEnergy
type SmearOptions struct {
	// MaxDR is the matching cone; a match also requires
	// |ΔPt| < 3*resolution*Pt
	MaxDR float64

	// Resolution overrides the objects' intrinsic resolution (optional)
	Resolution Resolution

	// ScaleFactors overrides the objects' intrinsic resolution scale
	// factors (optional)
	ScaleFactors ScaleFactors

	// Variation is passed to ScaleFactors; "nom" if empty
	Variation string

	// Logger receives per-object diagnostics at debug level (optional)
	Logger *zap.Logger
}

func (opts SmearOptions) variation() string {
	if opts.Variation == "" {
		return "nom"
	}
	return opts.Variation
}

// MatchAndSmearEnergy corrects the energy resolution of every constituent.
//
// A constituent matched to an object of matching (within MaxDR and three
// resolutions in Pt) is scaled toward the matched Pt:
//
//	factor = 1 + (sf - 1) * (pt - matchedPt) / pt
//
// An unmatched constituent is smeared stochastically:
//
//	factor = 1 + Gaus(0, resolution) * sqrt(max(sf² - 1, 0))
//
// The factor is floored at zero. Views with the smeared kinematics are
// returned, except those whose Pt falls below 1e-6; the change of every
// constituent, dropped or not, is accumulated into delta.
func MatchAndSmearEnergy[O Smearable, M Object](c *Collection, kind Kind[O], matching *Collection, matchKind Kind[M], opts SmearOptions, engine RandomEngine, delta *METDelta) []O {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	variation := opts.variation()

	smeared := make([]O, 0, c.Size())
	for i, raw := range c.rawIndices {
		o := kind(c, raw)
		resolution := o.EnergyRes()
		if opts.Resolution != nil {
			resolution = o.EnergyResFrom(opts.Resolution)
		}
		sf := o.EnergyResScaleFactor()
		if opts.ScaleFactors != nil {
			sf = o.EnergyResScaleFactorFrom(opts.ScaleFactors, variation)
		}

		oldPt := o.Pt()
		eta := o.Eta()
		phi := o.Phi()

		var factor float64
		if matched, ok := MatchByDRAndDPt(o, matching, matchKind, opts.MaxDR, 3*resolution*oldPt); ok {
			matchedPt := matched.Pt()
			factor = 1 + (sf-1)*(oldPt-matchedPt)/oldPt
			logger.Debug("Matched object",
				zap.String("name", o.Name()),
				zap.Int("constituent", i),
				zap.Float64("pt", oldPt),
				zap.Float64("eta", eta),
				zap.String("matchedName", matched.Name()),
				zap.Float64("matchedPt", matchedPt),
				zap.Float64("resScaleFactor", sf),
				zap.Float64("smearFactor", factor),
				zap.Float64("maxDPt", 3*resolution*oldPt))
		} else {
			sf = math.Max(sf, 0)
			factor = 1 + engine.Gaus(0, resolution)*math.Sqrt(math.Max(sf*sf-1, 0))
			logger.Debug("Unmatched object",
				zap.String("name", o.Name()),
				zap.Int("constituent", i),
				zap.Float64("pt", oldPt),
				zap.Float64("eta", eta),
				zap.Float64("resolution", resolution),
				zap.Float64("scaleFactor", sf),
				zap.Float64("smearFactor", factor))
			if logger.Core().Enabled(zapcore.DebugLevel) {
				Examine(logger, matching, matchKind, "matching collection", NullID)
			}
		}
		factor = math.Max(factor, 0)

		newPt := oldPt * factor
		delta.Add(fmom.NewPtEtaPhiM(oldPt, eta, phi, 0), fmom.NewPtEtaPhiM(newPt, eta, phi, 0))

		o.SetPt(newPt)
		o.SetEta(eta)
		o.SetPhi(phi)
		if newPt >= minKeptPt {
			smeared = append(smeared, o)
		}
	}
	logger.Debug("Smeared collection", zap.Int("in", c.Size()), zap.Int("out", len(smeared)))
	return smeared
}

package quarry

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ID is an identity classification tag passed to Object.PassUserID.
//
// The set is closed. An object kind returns false for tags it does not
// handle.
type ID int

// ID values
const (
	NullID ID = iota

	// electrons
	EleHEEP
	EleCutBasedVeto
	EleCutBasedLoose
	EleCutBasedMedium
	EleCutBasedTight
	EleMVA90

	// muons
	MuonLoose
	MuonMedium
	MuonTight
	MuonHighPtGlobal
	MuonHighPtTracker

	// jets
	JetTight
	JetTightLepVeto
	JetBTagLoose
	JetBTagMedium

	// generator particles
	GenEleFromLQ
	GenMuonFromLQ
	GenTauFromLQ
	GenFromLQ
	GenEleHardScatter
	GenNuHardScatter
	GenMuHardScatter
	GenQuarkHardScatter
	GenQuarkHardProcess
	GenZFromHardProcessLastCopy
	GenNuFromW
	GenEleFromW
	GenEleFromDY
	GenEleHardProcessFinalState
	GenEleFiducial
	GenMuonFiducial
	GenLQ
	GenTop
	GenStatus62
	GenIsLastCopy

	// trigger objects
	TrigElectron
	TrigMuon
	TrigJet
)

var idNames = map[ID]string{
	NullID:                      "none",
	EleHEEP:                     "ele_heep",
	EleCutBasedVeto:             "ele_cutbased_veto",
	EleCutBasedLoose:            "ele_cutbased_loose",
	EleCutBasedMedium:           "ele_cutbased_medium",
	EleCutBasedTight:            "ele_cutbased_tight",
	EleMVA90:                    "ele_mva90",
	MuonLoose:                   "muon_loose",
	MuonMedium:                  "muon_medium",
	MuonTight:                   "muon_tight",
	MuonHighPtGlobal:            "muon_highpt_global",
	MuonHighPtTracker:           "muon_highpt_tracker",
	JetTight:                    "jet_tight",
	JetTightLepVeto:             "jet_tight_lepveto",
	JetBTagLoose:                "jet_btag_loose",
	JetBTagMedium:               "jet_btag_medium",
	GenEleFromLQ:                "gen_ele_from_lq",
	GenMuonFromLQ:               "gen_muon_from_lq",
	GenTauFromLQ:                "gen_tau_from_lq",
	GenFromLQ:                   "gen_from_lq",
	GenEleHardScatter:           "gen_ele_hard_scatter",
	GenNuHardScatter:            "gen_nu_hard_scatter",
	GenMuHardScatter:            "gen_mu_hard_scatter",
	GenQuarkHardScatter:         "gen_quark_hard_scatter",
	GenQuarkHardProcess:         "gen_quark_hard_process",
	GenZFromHardProcessLastCopy: "gen_z_from_hard_process_last_copy",
	GenNuFromW:                  "gen_nu_from_w",
	GenEleFromW:                 "gen_ele_from_w",
	GenEleFromDY:                "gen_ele_from_dy",
	GenEleHardProcessFinalState: "gen_ele_hard_process_final_state",
	GenEleFiducial:              "gen_ele_fiducial",
	GenMuonFiducial:             "gen_muon_fiducial",
	GenLQ:                       "gen_lq",
	GenTop:                      "gen_top",
	GenStatus62:                 "gen_status62",
	GenIsLastCopy:               "gen_is_last_copy",
	TrigElectron:                "trig_electron",
	TrigMuon:                    "trig_muon",
	TrigJet:                     "trig_jet",
}

var idsByName = func() map[string]ID {
	res := make(map[string]ID, len(idNames))
	for id, name := range idNames {
		res[name] = id
	}
	return res
}()

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// ParseID returns the tag with the given name
func ParseID(name string) (ID, error) {
	id, ok := idsByName[name]
	if !ok {
		known := maps.Values(idNames)
		slices.Sort(known)
		return NullID, fmt.Errorf("unknown ID %q, expected one of %v", name, known)
	}
	return id, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

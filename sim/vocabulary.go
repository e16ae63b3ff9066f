package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// CodesetType identifies the vocabulary a coded concept was drawn from.
type CodesetType string

const (
	CodesetChiefComplaint  CodesetType = "EmergencyCareChiefComplaint"
	CodesetPriority        CodesetType = "Priority"
	CodesetDiagnosis       CodesetType = "EmergencyCareDiagnosis"
	CodesetTreatment       CodesetType = "EmergencyCareTreatment"
	CodesetDischargeMethod CodesetType = "EmergencyCareDischargeMethod"
	CodesetDischargeStatus CodesetType = "EmergencyCareDischargeStatus"
)

// Priority codes assigned at triage. Only EM and UR change durations or ordering.
const (
	PriorityEmergency = "EM"
	PriorityUrgent    = "UR"
	PriorityStandard  = "ST"
	PriorityNonUrgent = "NU"
)

// CodedConcept records one clinical decision made during an event.
type CodedConcept struct {
	ID          uuid.UUID   `json:"id"`
	Codeset     CodesetType `json:"codeset"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
}

func (c CodedConcept) String() string {
	return fmt.Sprintf("%s %s (%s)", c.Codeset, c.Code, c.Description)
}

// Term is one vocabulary entry.
type Term struct {
	Code        string
	Description string
}

// codesets holds the fixed vocabulary tables. Entry order is part of the reproducibility
// contract: seeded runs index into these slices.
var codesets = map[CodesetType][]Term{
	CodesetChiefComplaint: {
		{"29857009", "Chest pain"},
		{"21522001", "Abdominal pain"},
		{"267036007", "Breathlessness"},
		{"25064002", "Headache"},
		{"161891005", "Back pain"},
		{"422587007", "Nausea"},
		{"386661006", "Fever"},
		{"271807003", "Rash"},
		{"40917007", "Confusion"},
		{"125667009", "Bruising"},
	},
	CodesetPriority: {
		{PriorityEmergency, "Emergency"},
		{PriorityUrgent, "Urgent"},
		{PriorityStandard, "Standard"},
		{PriorityNonUrgent, "Non-urgent"},
	},
	CodesetDiagnosis: {
		{"22298006", "Myocardial infarction"},
		{"233604007", "Pneumonia"},
		{"74400008", "Appendicitis"},
		{"230690007", "Stroke"},
		{"68566005", "Urinary tract infection"},
		{"195967001", "Asthma"},
		{"125605004", "Fracture of bone"},
		{"62315008", "Diarrhoea"},
		{"37796009", "Migraine"},
		{"44054006", "Type 2 diabetes mellitus"},
	},
	CodesetTreatment: {
		{"225358003", "Wound care"},
		{"18629005", "Administration of medication"},
		{"274474001", "Bone immobilisation"},
		{"89666000", "Cardiopulmonary resuscitation"},
		{"57485005", "Oxygen therapy"},
		{"33879002", "Vaccination"},
	},
	CodesetDischargeMethod: {
		{"306689006", "Discharge to home"},
		{"306706006", "Discharge to ward"},
		{"19712007", "Transfer to another facility"},
		{"225928004", "Self-discharge against medical advice"},
	},
	CodesetDischargeStatus: {
		{"182992009", "Treatment completed"},
		{"1077031000000103", "Streamed to primary care"},
		{"1066331000000109", "Left before treatment completed"},
		{"419099009", "Died in department"},
	},
}

// Vocabulary draws coded concepts uniformly at random from the fixed tables.
type Vocabulary struct {
	rng Randomness
}

// NewVocabulary creates a Vocabulary backed by rng.
func NewVocabulary(rng Randomness) *Vocabulary {
	return &Vocabulary{rng: rng}
}

// Draw returns a freshly identified concept from the named codeset.
// Panics on an unknown codeset: every caller passes one of the constants above.
func (v *Vocabulary) Draw(codeset CodesetType) CodedConcept {
	terms, ok := codesets[codeset]
	if !ok {
		panic(fmt.Sprintf("unknown codeset %q", codeset))
	}
	t := terms[v.rng.Intn(len(terms))]
	return CodedConcept{
		ID:          uuid.New(),
		Codeset:     codeset,
		Code:        t.Code,
		Description: t.Description,
	}
}

// Terms returns the entries of a codeset.
func Terms(codeset CodesetType) []Term {
	return codesets[codeset]
}

package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clinician is a member of the department roster. Besides identity it owns the duration
// estimates and the coding produced for each kind of event.
type Clinician struct {
	ID     uuid.UUID
	Number string `validate:"required"`
	Name   Name

	durations Randomness
	vocab     *Vocabulary
}

// NewClinician validates and builds a Clinician. durations drives the time estimates and
// vocab the coding drawn on completion.
func NewClinician(number string, name Name, durations Randomness, vocab *Vocabulary) (*Clinician, error) {
	c := &Clinician{
		ID:        uuid.New(),
		Number:    number,
		Name:      name,
		durations: durations,
		vocab:     vocab,
	}
	if err := validateEntity("clinician", c); err != nil {
		return nil, err
	}
	if durations == nil || vocab == nil {
		return nil, fmt.Errorf("%w: clinician %s has no randomness source", ErrInvalidEntity, number)
	}
	return c, nil
}

func (c *Clinician) String() string {
	return fmt.Sprintf("%s / %s", c.Number, c.Name.FullName())
}

// TimeToTriage estimates triage minutes. Priority is unknown before triage.
func (c *Clinician) TimeToTriage(v *Visit, asOf time.Time) int {
	return triageDurations.draw(c.durations, v.Patient.Age(asOf), "")
}

// TimeToAssess estimates assessment minutes.
func (c *Clinician) TimeToAssess(v *Visit, asOf time.Time) int {
	return assessDurations.draw(c.durations, v.Patient.Age(asOf), v.PriorityCode())
}

// TimeToTreat estimates treatment minutes.
func (c *Clinician) TimeToTreat(v *Visit, asOf time.Time) int {
	return treatDurations.draw(c.durations, v.Patient.Age(asOf), v.PriorityCode())
}

// TimeToDischarge estimates discharge minutes.
func (c *Clinician) TimeToDischarge(v *Visit, asOf time.Time) int {
	return dischargeDurations.draw(c.durations, v.Patient.Age(asOf), v.PriorityCode())
}

// TriagePatient records the chief complaint and the priority.
func (c *Clinician) TriagePatient(_ *Visit) []CodedConcept {
	return []CodedConcept{
		c.vocab.Draw(CodesetChiefComplaint),
		c.vocab.Draw(CodesetPriority),
	}
}

// DiagnosePatient records a diagnosis.
func (c *Clinician) DiagnosePatient(_ *Visit) []CodedConcept {
	return []CodedConcept{c.vocab.Draw(CodesetDiagnosis)}
}

// TreatPatient records a treatment.
func (c *Clinician) TreatPatient(_ *Visit) []CodedConcept {
	return []CodedConcept{c.vocab.Draw(CodesetTreatment)}
}

// DischargePatient records how the patient left and in what state.
func (c *Clinician) DischargePatient(_ *Visit) []CodedConcept {
	return []CodedConcept{
		c.vocab.Draw(CodesetDischargeMethod),
		c.vocab.Draw(CodesetDischargeStatus),
	}
}

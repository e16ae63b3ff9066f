// Package hl7 renders visit notifications as HL7 v2 ADT messages and posts them to an
// HTTP endpoint.
package hl7

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ed-sim/ed-sim/sim"
)

const (
	segmentSeparator = "\r"
	timestampLayout  = "20060102150405"
	dateLayout       = "20060102"
	hl7Version       = "2.4"
)

// Message types sent on arrival. A04 registers an outpatient, A01 admits.
const (
	TypeRegister = "A04"
	TypeAdmit    = "A01"
)

// ErrIncompleteVisit is returned when a discharge message needs coding that the visit
// does not carry.
var ErrIncompleteVisit = errors.New("visit is missing coding required for discharge")

// Builder renders messages. Control IDs are fresh UUIDs unless NewID is set.
type Builder struct {
	SendingApplication    string
	SendingOrganisation   string
	ReceivingApplication  string
	ReceivingOrganisation string
	VisitCreatedType      string // TypeRegister or TypeAdmit

	NewID func() string
}

// VisitCreated renders the arrival message, ADT^A04 by default.
func (b *Builder) VisitCreated(v sim.VisitSnapshot, at time.Time) string {
	trigger := TypeRegister
	if b.VisitCreatedType == TypeAdmit {
		trigger = TypeAdmit
	}
	return join(
		b.msh(trigger, at),
		pid(v.Patient, arrivalIdentifierRepeats),
		segment("PV1", map[int]string{
			1:  "1",
			2:  "E",
			4:  "F",
			19: b.visitNumber(v),
			42: "^^^" + b.SendingOrganisation,
			44: v.Start.Format(timestampLayout),
		}),
	)
}

// Discharged renders ADT^A03 for a visit whose discharge event has completed.
func (b *Builder) Discharged(v sim.VisitSnapshot, discharge sim.EventSnapshot, at time.Time) (string, error) {
	complaint, ok := concept(v, sim.KindTriage, sim.CodesetChiefComplaint)
	if !ok {
		return "", fmt.Errorf("%w: %s has no chief complaint", ErrIncompleteVisit, v.ID)
	}
	diagnosis, ok := concept(v, sim.KindAssessment, sim.CodesetDiagnosis)
	if !ok {
		return "", fmt.Errorf("%w: %s has no diagnosis", ErrIncompleteVisit, v.ID)
	}
	treatment, ok := concept(v, sim.KindTreatment, sim.CodesetTreatment)
	if !ok {
		return "", fmt.Errorf("%w: %s has no treatment", ErrIncompleteVisit, v.ID)
	}
	status, ok := conceptIn(discharge.Coding, sim.CodesetDischargeStatus)
	if !ok {
		return "", fmt.Errorf("%w: %s has no discharge status", ErrIncompleteVisit, v.ID)
	}
	if discharge.Completion == nil {
		return "", fmt.Errorf("%w: discharge for %s is still open", ErrIncompleteVisit, v.ID)
	}

	return join(
		b.msh("A03", at),
		pid(v.Patient, 1),
		segment("PV1", map[int]string{
			1:  "1",
			2:  "E",
			4:  "F",
			19: b.visitNumber(v),
			36: status.Code,
			42: "^^^" + b.SendingOrganisation,
			44: v.Start.Format(timestampLayout),
			45: discharge.Completion.Format(timestampLayout),
		}),
		"DG1|1||"+diagnosis.Code+"^"+diagnosis.Description,
		"DG2|2||"+complaint.Code+"^"+complaint.Description,
		"PR1|2||"+treatment.Code+"^"+treatment.Description,
	), nil
}

func (b *Builder) msh(trigger string, at time.Time) string {
	id := uuid.NewString()
	if b.NewID != nil {
		id = b.NewID()
	}
	return fmt.Sprintf("MSH|^~\\&|%s|%s|%s|%s|%s||ADT^%s|%s|P|%s|||AL|NE",
		b.SendingApplication, b.SendingOrganisation, b.ReceivingApplication, b.ReceivingOrganisation,
		at.Format(timestampLayout), trigger, id, hl7Version)
}

// visitNumber is the organisation prefix plus the first block of the visit UUID.
func (b *Builder) visitNumber(v sim.VisitSnapshot) string {
	short, _, _ := strings.Cut(v.ID, "-")
	return b.SendingOrganisation + "-" + short
}

// arrivalIdentifierRepeats is how many times arrival messages carry the NHS identifier
// in PID-3.
const arrivalIdentifierRepeats = 3

// pid renders the patient segment with the NHS identifier repeated in PID-3.
func pid(p sim.PatientSnapshot, repeats int) string {
	a := p.Address
	ids := make([]string, repeats)
	for i := range ids {
		ids[i] = p.NHSNumber + "^^^NHS^NHSNumber"
	}
	return segment("PID", map[int]string{
		1:  "1",
		2:  p.ID,
		3:  strings.Join(ids, "~"),
		5:  p.Name.Surname + "^" + p.Name.FirstName,
		7:  p.DateOfBirth.Format(dateLayout),
		11: a.Street + "^^" + a.City + "^" + a.County + "^" + a.Postcode + "^^H",
		22: "A",
	})
}

// segment renders name followed by fields placed at their 1-based positions.
func segment(name string, fields map[int]string) string {
	last := 0
	for i := range fields {
		if i > last {
			last = i
		}
	}
	parts := make([]string, last+1)
	parts[0] = name
	for i, f := range fields {
		parts[i] = f
	}
	return strings.Join(parts, "|")
}

func join(segments ...string) string {
	return strings.Join(segments, segmentSeparator) + segmentSeparator
}

func concept(v sim.VisitSnapshot, kind sim.EventKind, codeset sim.CodesetType) (sim.CodedConcept, bool) {
	for _, e := range v.Events {
		if e.Kind == kind.String() {
			return conceptIn(e.Coding, codeset)
		}
	}
	return sim.CodedConcept{}, false
}

func conceptIn(coding []sim.CodedConcept, codeset sim.CodesetType) (sim.CodedConcept, bool) {
	for _, c := range coding {
		if c.Codeset == codeset {
			return c, true
		}
	}
	return sim.CodedConcept{}, false
}

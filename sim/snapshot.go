package sim

import "time"

// Snapshots are detached copies of engine entities, safe to hand to other goroutines and
// to serialize.

type ClinicianSnapshot struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Name   Name   `json:"name"`
}

type PatientSnapshot struct {
	ID          string    `json:"id"`
	NHSNumber   string    `json:"nhs_number"`
	Name        Name      `json:"name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Address     Address   `json:"address"`
}

type EventSnapshot struct {
	ID                 string            `json:"id"`
	VisitID            string            `json:"visit_id"`
	Kind               string            `json:"kind"`
	Clinician          ClinicianSnapshot `json:"clinician"`
	Duration           int               `json:"duration_minutes"`
	Start              time.Time         `json:"start"`
	ExpectedCompletion time.Time         `json:"expected_completion"`
	Completion         *time.Time        `json:"completion,omitempty"`
	Coding             []CodedConcept    `json:"coding"`
}

type VisitSnapshot struct {
	ID           string          `json:"id"`
	DepartmentID string          `json:"department_id"`
	Patient      PatientSnapshot `json:"patient"`
	Start        time.Time       `json:"start"`
	State        VisitState      `json:"state"`
	Priority     string          `json:"priority,omitempty"`
	Events       []EventSnapshot `json:"events"`
}

type DepartmentSnapshot struct {
	ID             string              `json:"id"`
	At             time.Time           `json:"at"`
	Clinicians     []ClinicianSnapshot `json:"clinicians"`
	BusyClinicians int                 `json:"busy_clinicians"`
	Waiting        int                 `json:"waiting"`
	BeingSeen      int                 `json:"being_seen"`
	Discharged     int                 `json:"discharged"`
	Visits         []VisitSnapshot     `json:"visits"`
}

// SnapshotClinician copies a clinician's identity.
func SnapshotClinician(c *Clinician) ClinicianSnapshot {
	return ClinicianSnapshot{ID: c.ID.String(), Number: c.Number, Name: c.Name}
}

// SnapshotPatient copies a patient's identity.
func SnapshotPatient(p *Patient) PatientSnapshot {
	return PatientSnapshot{
		ID:          p.ID.String(),
		NHSNumber:   p.NHSNumber,
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth,
		Address:     p.Address,
	}
}

// SnapshotEvent copies an event and its coding.
func SnapshotEvent(e *Event) EventSnapshot {
	s := EventSnapshot{
		ID:                 e.ID.String(),
		VisitID:            e.Visit.ID.String(),
		Kind:               e.Kind.String(),
		Clinician:          SnapshotClinician(e.Clinician),
		Duration:           e.Duration,
		Start:              e.Start,
		ExpectedCompletion: e.ExpectedCompletion(),
		Coding:             append([]CodedConcept(nil), e.Coding...),
	}
	if t, ok := e.CompletionTime(); ok {
		s.Completion = &t
	}
	return s
}

// SnapshotVisit copies a visit, its patient and every event.
func SnapshotVisit(v *Visit) VisitSnapshot {
	s := VisitSnapshot{
		ID:           v.ID.String(),
		DepartmentID: v.Department.ID.String(),
		Patient:      SnapshotPatient(v.Patient),
		Start:        v.Start,
		State:        v.State(),
		Priority:     v.PriorityCode(),
		Events:       make([]EventSnapshot, 0, len(v.Events)),
	}
	for _, e := range v.Events {
		s.Events = append(s.Events, SnapshotEvent(e))
	}
	return s
}

// SnapshotDepartment copies the whole department as of at.
func SnapshotDepartment(d *Department, at time.Time) *DepartmentSnapshot {
	s := &DepartmentSnapshot{
		ID:         d.ID.String(),
		At:         at,
		Clinicians: make([]ClinicianSnapshot, 0, len(d.Clinicians)),
		Visits:     make([]VisitSnapshot, 0, len(d.Visits)),
	}
	for _, c := range d.Clinicians {
		s.Clinicians = append(s.Clinicians, SnapshotClinician(c))
	}
	for _, v := range d.Visits {
		vs := SnapshotVisit(v)
		switch vs.State {
		case StateWaitingToBeSeen:
			s.Waiting++
		case StateBeingSeen:
			s.BeingSeen++
			s.BusyClinicians++
		case StateDischarged:
			s.Discharged++
		}
		s.Visits = append(s.Visits, vs)
	}
	return s
}

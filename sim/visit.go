package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VisitState is derived from a visit's events; it is never stored.
type VisitState string

const (
	StateWaitingToBeSeen VisitState = "waiting"
	StateBeingSeen       VisitState = "being-seen"
	StateDischarged      VisitState = "discharged"
)

// successors is the workflow transition table keyed by the kind of the latest event.
// A visit with no events starts at KindTriage; KindDischarge has no successor.
var successors = map[EventKind]EventKind{
	KindTriage:     KindAssessment,
	KindAssessment: KindTreatment,
	KindTreatment:  KindDischarge,
}

// Visit is one patient's attendance at the department.
// Events are appended in chronological order and at most one is open at a time.
type Visit struct {
	ID         uuid.UUID
	Department *Department
	Patient    *Patient
	Start      time.Time
	Events     []*Event
}

// LatestEvent returns the most recently started event, or nil.
func (v *Visit) LatestEvent() *Event {
	if len(v.Events) == 0 {
		return nil
	}
	return v.Events[len(v.Events)-1]
}

// IsBeingSeen reports whether the latest event is open.
func (v *Visit) IsBeingSeen() bool {
	e := v.LatestEvent()
	return e != nil && !e.IsCompleted()
}

// IsDischarged reports whether the latest event is a completed discharge.
func (v *Visit) IsDischarged() bool {
	e := v.LatestEvent()
	return e != nil && e.Kind == KindDischarge && e.IsCompleted()
}

// IsWaitingToBeSeen reports whether the visit can progress: no events yet, or the latest
// one is closed and the patient is not discharged.
func (v *Visit) IsWaitingToBeSeen() bool {
	e := v.LatestEvent()
	return e == nil || (e.IsCompleted() && !v.IsDischarged())
}

// State derives the workflow state.
func (v *Visit) State() VisitState {
	switch {
	case v.IsDischarged():
		return StateDischarged
	case v.IsBeingSeen():
		return StateBeingSeen
	default:
		return StateWaitingToBeSeen
	}
}

// Priority returns the priority concept recorded at triage, if triage has completed.
func (v *Visit) Priority() (CodedConcept, bool) {
	for _, e := range v.Events {
		if e.Kind != KindTriage {
			continue
		}
		for _, c := range e.Coding {
			if c.Codeset == CodesetPriority {
				return c, true
			}
		}
		return CodedConcept{}, false
	}
	return CodedConcept{}, false
}

// PriorityCode returns the triage priority code, or "" before triage.
func (v *Visit) PriorityCode() string {
	c, ok := v.Priority()
	if !ok {
		return ""
	}
	return c.Code
}

// EventOfKind returns the event of the given kind, if one has started.
func (v *Visit) EventOfKind(kind EventKind) (*Event, bool) {
	for _, e := range v.Events {
		if e.Kind == kind {
			return e, true
		}
	}
	return nil, false
}

// StartNextEvent creates the next workflow event, performed by clinician and starting at
// now. Fails with ErrPrecondition when clinician is nil, the patient is being seen or
// already discharged.
func (v *Visit) StartNextEvent(clinician *Clinician, now time.Time) (*Event, error) {
	if clinician == nil {
		return nil, fmt.Errorf("%w: cannot start next event for visit %s without a clinician", ErrPrecondition, v.ID)
	}
	if v.IsBeingSeen() {
		return nil, fmt.Errorf("%w: cannot start next event for visit %s, the patient is currently being seen", ErrPrecondition, v.ID)
	}
	if v.IsDischarged() {
		return nil, fmt.Errorf("%w: cannot start next event for visit %s, the patient has been discharged", ErrPrecondition, v.ID)
	}

	kind := KindTriage
	if latest := v.LatestEvent(); latest != nil {
		next, ok := successors[latest.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: visit %s has latest event of kind %v", ErrUnknownWorkflowState, v.ID, latest.Kind)
		}
		kind = next
	}
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no behaviour registered for %v", ErrUnknownWorkflowState, kind)
	}

	e := newEvent(kind, v, clinician, spec.estimate(clinician, v, now), now)
	v.Events = append(v.Events, e)
	return e, nil
}

// CompleteLatestEvent closes the open event at now, attaching its coding.
// Fails with ErrPrecondition when there is no event or the latest is already closed.
func (v *Visit) CompleteLatestEvent(now time.Time) (*Event, error) {
	e := v.LatestEvent()
	if e == nil {
		return nil, fmt.Errorf("%w: no event has occurred for visit %s", ErrPrecondition, v.ID)
	}
	if e.IsCompleted() {
		return nil, fmt.Errorf("%w: the latest event of visit %s has been completed", ErrPrecondition, v.ID)
	}
	if err := e.complete(now); err != nil {
		return nil, err
	}
	return e, nil
}

// String is a multi-line dump for debug logging.
func (v *Visit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "visit %s: patient %s / %s / %s, priority %q, state %s",
		v.ID, v.Patient.ID, v.Patient.NHSNumber, v.Patient.Name.FullName(), v.PriorityCode(), v.State())
	for _, e := range v.Events {
		fmt.Fprintf(&b, "\n  %s", e)
	}
	return b.String()
}

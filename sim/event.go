package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind tags the variant of an Event.
type EventKind int

const (
	KindTriage EventKind = iota + 1
	KindAssessment
	KindTreatment
	KindDischarge
)

// kindSpec is the behaviour selected by an EventKind.
type kindSpec struct {
	name     string
	estimate func(c *Clinician, v *Visit, asOf time.Time) int
	code     func(c *Clinician, v *Visit) []CodedConcept
}

// kindSpecs is the single dispatch table for per-kind behaviour.
var kindSpecs = map[EventKind]kindSpec{
	KindTriage:     {"Triage", (*Clinician).TimeToTriage, (*Clinician).TriagePatient},
	KindAssessment: {"Assessment", (*Clinician).TimeToAssess, (*Clinician).DiagnosePatient},
	KindTreatment:  {"Treatment", (*Clinician).TimeToTreat, (*Clinician).TreatPatient},
	KindDischarge:  {"Discharge", (*Clinician).TimeToDischarge, (*Clinician).DischargePatient},
}

func (k EventKind) String() string {
	if s, ok := kindSpecs[k]; ok {
		return s.name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one clinical action within a visit. It is open until completed; the
// completion time is set exactly once.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	Visit     *Visit
	Clinician *Clinician
	Duration  int // minutes, fixed at creation
	Start     time.Time
	Coding    []CodedConcept

	completion *time.Time
}

func newEvent(kind EventKind, v *Visit, c *Clinician, duration int, start time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Kind:      kind,
		Visit:     v,
		Clinician: c,
		Duration:  duration,
		Start:     start,
	}
}

// ExpectedCompletion is Start plus Duration minutes.
func (e *Event) ExpectedCompletion() time.Time {
	return e.Start.Add(time.Duration(e.Duration) * time.Minute)
}

// IsCompleted reports whether the event has been closed.
func (e *Event) IsCompleted() bool {
	return e.completion != nil
}

// CompletionTime returns the completion time and whether the event is completed.
func (e *Event) CompletionTime() (time.Time, bool) {
	if e.completion == nil {
		return time.Time{}, false
	}
	return *e.completion, true
}

// IsPendingCompletion reports whether the expected completion has passed without the
// event being closed.
func (e *Event) IsPendingCompletion(now time.Time) bool {
	return now.After(e.ExpectedCompletion()) && !e.IsCompleted()
}

// Concept returns the first attached concept from codeset.
func (e *Event) Concept(codeset CodesetType) (CodedConcept, bool) {
	for _, c := range e.Coding {
		if c.Codeset == codeset {
			return c, true
		}
	}
	return CodedConcept{}, false
}

// complete attaches the kind-specific coding and stamps the completion time.
func (e *Event) complete(now time.Time) error {
	if e.IsCompleted() {
		return fmt.Errorf("%w: event %s already completed", ErrPrecondition, e.ID)
	}
	spec, ok := kindSpecs[e.Kind]
	if !ok {
		return fmt.Errorf("%w: event %s has kind %v", ErrUnknownWorkflowState, e.ID, e.Kind)
	}
	e.Coding = append(e.Coding, spec.code(e.Clinician, e.Visit)...)
	e.completion = &now
	return nil
}

func (e *Event) String() string {
	completed := "open"
	if t, ok := e.CompletionTime(); ok {
		completed = t.Format(time.DateTime)
	}
	return fmt.Sprintf("%s %s (clinician %s, %d min, started %s, expected %s, completed %s)",
		e.Kind, e.ID, e.Clinician.Number, e.Duration,
		e.Start.Format(time.DateTime), e.ExpectedCompletion().Format(time.DateTime), completed)
}

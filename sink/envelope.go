// Package sink delivers engine notifications to external collaborators.
//
// The engine calls Dispatcher.Notify on its own goroutine. Notify copies what the
// notification refers to into an Envelope and queues it; a worker goroutine hands each
// envelope to every registered Sink in order. Sinks never see live engine objects.
package sink

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ed-sim/ed-sim/sim"
)

// Envelope is an immutable record of one state change.
type Envelope struct {
	ID           string                 `json:"id"`
	Kind         sim.NotificationKind   `json:"kind"`
	At           time.Time              `json:"at"`
	DepartmentID string                 `json:"department_id"`
	Clinician    *sim.ClinicianSnapshot `json:"clinician,omitempty"`
	Visit        *sim.VisitSnapshot     `json:"visit,omitempty"`
	Event        *sim.EventSnapshot     `json:"event,omitempty"`
}

// NewEnvelope snapshots everything n refers to. It must run on the engine goroutine.
func NewEnvelope(n sim.Notification) Envelope {
	env := Envelope{
		ID:   uuid.NewString(),
		Kind: n.Kind,
		At:   n.At,
	}
	if n.Department != nil {
		env.DepartmentID = n.Department.ID.String()
	}
	if n.Clinician != nil {
		c := sim.SnapshotClinician(n.Clinician)
		env.Clinician = &c
	}
	if n.Visit != nil {
		v := sim.SnapshotVisit(n.Visit)
		env.Visit = &v
	}
	if n.Event != nil {
		e := sim.SnapshotEvent(n.Event)
		env.Event = &e
	}
	return env
}

// Marshal encodes the envelope as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Sink receives envelopes from the dispatcher worker, one at a time.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, env Envelope) error
}

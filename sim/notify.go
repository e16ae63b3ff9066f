package sim

import "time"

// NotificationKind names the state change a Notification reports.
type NotificationKind string

const (
	NotifyDepartmentCreated NotificationKind = "department-created"
	NotifyClinicianAdded    NotificationKind = "clinician-added"
	NotifyVisitCreated      NotificationKind = "visit-created"
	NotifyEventStarted      NotificationKind = "event-started"
	NotifyEventCompleted    NotificationKind = "event-completed"
)

// Notification carries the entity whose state changed. Only the field matching Kind is
// guaranteed to be set; Visit is also set for event notifications.
//
// Entities are live engine objects. Receivers that hand them to another goroutine must
// copy what they need before Notify returns.
type Notification struct {
	Kind       NotificationKind
	At         time.Time // simulated time of the change
	Department *Department
	Clinician  *Clinician
	Visit      *Visit
	Event      *Event
}

// Notifier receives notifications in the order the state changes occurred.
// Notify must not block the engine for long; slow delivery belongs behind a queue.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Notifiers fans a notification out to each member in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		x.Notify(n)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

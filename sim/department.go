package sim

import (
	"time"

	"github.com/google/uuid"
)

// Department owns the clinician roster and every visit. Both are append-only.
type Department struct {
	ID         uuid.UUID
	Clinicians []*Clinician
	Visits     []*Visit

	allocation Randomness
}

// NewDepartment creates an empty department. allocation spreads work across idle
// clinicians.
func NewDepartment(allocation Randomness) *Department {
	return &Department{ID: uuid.New(), allocation: allocation}
}

// CreateVisit registers an arriving patient.
func (d *Department) CreateVisit(p *Patient, now time.Time) *Visit {
	v := &Visit{ID: uuid.New(), Department: d, Patient: p, Start: now}
	d.Visits = append(d.Visits, v)
	return v
}

// AddClinician appends to the roster. Duplicates are not checked.
func (d *Department) AddClinician(c *Clinician) {
	d.Clinicians = append(d.Clinicians, c)
}

// AvailableClinician returns a clinician chosen uniformly at random among those not
// performing an open event, or nil when everyone is busy.
func (d *Department) AvailableClinician() *Clinician {
	busy := make(map[uuid.UUID]bool)
	for _, v := range d.Visits {
		if v.IsBeingSeen() {
			busy[v.LatestEvent().Clinician.ID] = true
		}
	}
	free := make([]*Clinician, 0, len(d.Clinicians))
	for _, c := range d.Clinicians {
		if !busy[c.ID] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return nil
	}
	return free[d.allocation.Intn(len(free))]
}

// VisitsInState returns the visits currently in state, in arrival order.
func (d *Department) VisitsInState(state VisitState) []*Visit {
	var out []*Visit
	for _, v := range d.Visits {
		if v.State() == state {
			out = append(out, v)
		}
	}
	return out
}

// DischargedPatients returns the distinct patients with a completed visit, in order of
// first appearance.
func (d *Department) DischargedPatients() []*Patient {
	seen := make(map[uuid.UUID]bool)
	var out []*Patient
	for _, v := range d.Visits {
		if !v.IsDischarged() || seen[v.Patient.ID] {
			continue
		}
		seen[v.Patient.ID] = true
		out = append(out, v.Patient)
	}
	return out
}

// VisitCount returns how many visits p has made, including any in progress.
func (d *Department) VisitCount(p *Patient) int {
	n := 0
	for _, v := range d.Visits {
		if v.Patient.ID == p.ID {
			n++
		}
	}
	return n
}

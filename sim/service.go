package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sim/trace"
)

// TickReport summarises one UpdateState call.
type TickReport struct {
	Tick      int
	SimTime   time.Time
	Completed int
	Started   int
	Waiting   int     // visits still waiting after the assignment pass
	Stalled   bool    // the assignment pass stopped because no clinician was free
	Failures  []error // operations skipped after a workflow error
}

// Service orchestrates the department: it seeds clinicians, registers arrivals and runs
// the per-tick completion and assignment passes.
//
// Thread-safety: NOT thread-safe. All calls must come from the engine goroutine.
type Service struct {
	cfg        Config
	clock      Clock
	people     *PersonGenerator
	vocab      *Vocabulary
	durations  Randomness
	arrivals   Randomness
	notifier   Notifier
	trace      *trace.SimulationTrace
	department *Department
	ticks      int
}

// NewService validates cfg, creates the department and emits department-created.
// A nil notifier discards notifications.
func NewService(cfg Config, clock Clock, rng *PartitionedRNG, notifier Notifier) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	s := &Service{
		cfg:        cfg,
		clock:      clock,
		people:     NewPersonGenerator(rng.SeedFor(SubsystemPeople)),
		vocab:      NewVocabulary(rng.ForSubsystem(SubsystemCoding)),
		durations:  rng.ForSubsystem(SubsystemDurations),
		arrivals:   rng.ForSubsystem(SubsystemArrivals),
		notifier:   notifier,
		department: NewDepartment(rng.ForSubsystem(SubsystemAllocation)),
	}

	logrus.Infof("Emergency department %s created.", s.department.ID)
	s.notifier.Notify(Notification{Kind: NotifyDepartmentCreated, At: clock.Now(), Department: s.department})
	return s, nil
}

// SetTrace enables decision recording. A nil trace disables it.
func (s *Service) SetTrace(st *trace.SimulationTrace) {
	s.trace = st
}

// Department returns the aggregate the service drives.
func (s *Service) Department() *Department {
	return s.department
}

// Clock returns the service's clock.
func (s *Service) Clock() Clock {
	return s.clock
}

// AddClinician generates a clinician, adds it to the roster and emits clinician-added.
func (s *Service) AddClinician() (*Clinician, error) {
	c, err := s.people.Clinician(s.durations, s.vocab)
	if err != nil {
		return nil, fmt.Errorf("generating clinician: %w", err)
	}
	s.department.AddClinician(c)

	logrus.Infof("Added clinician %s.", c)
	s.notifier.Notify(Notification{Kind: NotifyClinicianAdded, At: s.clock.Now(), Department: s.department, Clinician: c})
	return c, nil
}

// CreateVisit registers an arrival, choosing between a returning and a new patient.
//
// The chance of a return grows with the discharged pool: with r drawn from
// [0, SizeOfPopulation], a discharged patient returns when the pool size is at least r.
// An empty pool always yields a new patient.
func (s *Service) CreateVisit() (*Visit, error) {
	now := s.clock.Now()
	discharged := s.department.DischargedPatients()
	r := uniformInt(s.arrivals, 0, s.cfg.SizeOfPopulation+1)

	var patient *Patient
	if len(discharged) > 0 && len(discharged) >= r {
		patient = discharged[s.arrivals.Intn(len(discharged))]
	} else {
		p, err := s.people.Patient(now)
		if err != nil {
			return nil, fmt.Errorf("generating patient: %w", err)
		}
		patient = p
	}
	return s.CreateVisitFor(patient)
}

// CreateVisitFor registers an arrival for a known patient and emits visit-created.
// A nil patient is rejected with ErrInvalidEntity.
func (s *Service) CreateVisitFor(p *Patient) (*Visit, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: a visit requires a patient", ErrInvalidEntity)
	}
	previous := s.department.VisitCount(p)
	v := s.department.CreateVisit(p, s.clock.Now())

	suffix := "s"
	if previous == 1 {
		suffix = ""
	}
	logrus.Infof("Created visit %s for patient %s / %s / %s (%d previous visit%s).",
		v.ID, p.ID, p.NHSNumber, p.Name.FullName(), previous, suffix)
	s.notifier.Notify(Notification{Kind: NotifyVisitCreated, At: v.Start, Department: s.department, Visit: v})
	return v, nil
}

// UpdateState runs one tick: first every due event is completed, then waiting visits are
// assigned clinicians in priority order until the roster is exhausted. Completing first
// lets a clinician freed this tick be reassigned within it.
//
// Workflow errors are logged and the visit skipped; they never abort the tick.
func (s *Service) UpdateState() TickReport {
	s.ticks++
	now := s.clock.Now()
	report := TickReport{Tick: s.ticks, SimTime: now}
	if s.trace.Enabled() {
		s.trace.RecordTick()
	}
	logrus.Debugf("[tick %07d] Updating state. The simulation time is %s.", s.ticks, now.Format(time.DateTime))

	s.completeDueEvents(now, &report)
	s.assignWaitingVisits(now, &report)
	return report
}

func (s *Service) completeDueEvents(now time.Time, report *TickReport) {
	var due []*Visit
	for _, v := range s.department.Visits {
		if e := v.LatestEvent(); e != nil && e.IsPendingCompletion(now) {
			due = append(due, v)
		}
	}
	logrus.Debugf("Found %d visits where the latest event is pending completion.", len(due))

	for _, v := range due {
		e, err := v.CompleteLatestEvent(now)
		if err != nil {
			logrus.Errorf("Skipping completion for visit %s: %v", v.ID, err)
			report.Failures = append(report.Failures, err)
			continue
		}
		report.Completed++
		logrus.Infof("Completed event %s for visit %s.", e.Kind, v.ID)
		logrus.Debugf("%s", v)

		if s.trace.Enabled() {
			s.trace.RecordCompletion(trace.CompletionRecord{
				Tick: s.ticks, SimTime: now, VisitID: v.ID.String(), EventID: e.ID.String(),
				Kind: e.Kind.String(), ClinicianID: e.Clinician.ID.String(),
			})
		}
		s.notifier.Notify(Notification{Kind: NotifyEventCompleted, At: now, Department: s.department, Visit: v, Event: e})
	}
}

func (s *Service) assignWaitingVisits(now time.Time, report *TickReport) {
	waiting := s.department.VisitsInState(StateWaitingToBeSeen)
	logrus.Debugf("Found %d visits waiting to be seen.", len(waiting))
	OrderByPriority(waiting)

	for rank, v := range waiting {
		clinician := s.department.AvailableClinician()
		if clinician == nil {
			report.Stalled = true
			break
		}

		e, err := v.StartNextEvent(clinician, now)
		if err != nil {
			logrus.Errorf("Skipping assignment for visit %s: %v", v.ID, err)
			report.Failures = append(report.Failures, err)
			continue
		}
		report.Started++
		logrus.Infof("Started event %s for visit %s with clinician %s.", e.Kind, v.ID, clinician.Number)
		logrus.Debugf("%s", v)

		if s.trace.Enabled() {
			s.trace.RecordAssignment(trace.AssignmentRecord{
				Tick: s.ticks, SimTime: now, VisitID: v.ID.String(), EventID: e.ID.String(),
				Kind: e.Kind.String(), ClinicianID: clinician.ID.String(),
				Priority: v.PriorityCode(), Duration: e.Duration, Rank: rank,
			})
		}
		s.notifier.Notify(Notification{Kind: NotifyEventStarted, At: now, Department: s.department, Visit: v, Event: e})
	}

	// Visits skipped after a workflow error are still waiting.
	report.Waiting = len(s.department.VisitsInState(StateWaitingToBeSeen))
	if report.Stalled {
		logrus.Debugf("All clinicians are busy; %d visits left waiting.", report.Waiting)
		if s.trace.Enabled() {
			s.trace.RecordStall(trace.StallRecord{Tick: s.ticks, SimTime: now, Waiting: report.Waiting})
		}
	}
}

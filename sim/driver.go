package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrDriverStopped is returned by Snapshot once Run has returned.
var ErrDriverStopped = errors.New("driver stopped")

// Driver is the background loop: it seeds the roster, then on every tick runs the
// scheduler and lets the next batch of patients arrive when it is due.
type Driver struct {
	svc         *Service
	cfg         Config
	arrivals    Randomness
	nextArrival time.Time
	started     bool
	snapshots   chan chan *DepartmentSnapshot
	done        chan struct{}
}

// NewDriver wraps a service. Arrival draws come from the arrivals subsystem of rng.
func NewDriver(svc *Service, rng *PartitionedRNG) *Driver {
	return &Driver{
		svc:       svc,
		cfg:       svc.cfg,
		arrivals:  rng.ForSubsystem(SubsystemArrivals),
		snapshots: make(chan chan *DepartmentSnapshot),
		done:      make(chan struct{}),
	}
}

// Start adds the configured clinicians and schedules the first arrival for now.
// Calling Start more than once is a no-op.
func (d *Driver) Start() error {
	if d.started {
		return nil
	}
	logrus.Infof("ED simulator started with %s", d.cfg)
	for i := 0; i < d.cfg.NumberOfClinicians; i++ {
		if _, err := d.svc.AddClinician(); err != nil {
			return fmt.Errorf("seeding clinicians: %w", err)
		}
	}
	d.nextArrival = d.svc.clock.Now()
	d.started = true
	return nil
}

// NextArrival returns when the next batch of patients is due.
func (d *Driver) NextArrival() time.Time {
	return d.nextArrival
}

// Step runs one tick: the scheduler passes, then arrivals if due.
func (d *Driver) Step() TickReport {
	report := d.svc.UpdateState()

	if d.svc.clock.Now().Before(d.nextArrival) {
		return report
	}

	arrived := uniformInt(d.arrivals, 1, d.cfg.PopulationWrecklessness+1)
	logrus.Infof("%d patients have arrived at the department.", arrived)
	for i := 0; i < arrived; i++ {
		if _, err := d.svc.CreateVisit(); err != nil {
			logrus.Errorf("Could not register arrival: %v", err)
		}
	}

	gap := uniformInt(d.arrivals, 0, d.cfg.ArrivalInterval()*2)
	d.nextArrival = d.nextArrival.Add(time.Duration(gap) * time.Minute)
	logrus.Infof("Patients will next arrive at %s.", d.nextArrival.Format(time.DateTime))
	return report
}

// Run starts the driver if needed and ticks every TickInterval until ctx is cancelled.
// The tick in progress always finishes before Run returns.
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.done)
	if err := d.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	d.Step()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("ED simulator stopping.")
			return nil
		case reply := <-d.snapshots:
			reply <- SnapshotDepartment(d.svc.department, d.svc.clock.Now())
		case <-ticker.C:
			d.Step()
		}
	}
}

// Snapshot asks the running loop for a copy of the department, taken between ticks.
func (d *Driver) Snapshot(ctx context.Context) (*DepartmentSnapshot, error) {
	reply := make(chan *DepartmentSnapshot, 1)
	select {
	case d.snapshots <- reply:
	case <-d.done:
		return nil, ErrDriverStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

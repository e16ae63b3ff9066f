package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sink"
)

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type update struct {
	filter bson.M
	set    interface{}
	upsert bool
}

type fakeCollection struct {
	updates []update
	err     error
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, u interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec := update{filter: filter.(bson.M), set: u.(bson.M)["$set"]}
	for _, o := range opts {
		if o.Upsert != nil {
			rec.upsert = *o.Upsert
		}
	}
	f.updates = append(f.updates, rec)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

type recorder struct {
	envs []sink.Envelope
}

func (r *recorder) Notify(n sim.Notification) { r.envs = append(r.envs, sink.NewEnvelope(n)) }

func TestStore_ProjectsEveryEnvelope(t *testing.T) {
	// GIVEN the envelopes produced by one clinician seeing one visit through triage
	rec := &recorder{}
	clock := sim.NewManualClock(testStart)
	svc, err := sim.NewService(sim.DefaultConfig(), clock, sim.NewPartitionedRNG(sim.NewSimulationKey(9)), rec)
	require.NoError(t, err)
	c, err := svc.AddClinician()
	require.NoError(t, err)
	v, err := svc.CreateVisit()
	require.NoError(t, err)
	svc.UpdateState()
	clock.Advance(time.Hour)
	svc.UpdateState()

	departments, clinicians, visits := &fakeCollection{}, &fakeCollection{}, &fakeCollection{}
	store := NewStore(departments, clinicians, visits)

	// WHEN every envelope is delivered
	for _, env := range rec.envs {
		require.NoError(t, store.Deliver(context.Background(), env))
	}

	// THEN each entity is upserted by ID into its collection
	require.Len(t, departments.updates, 1)
	assert.Equal(t, bson.M{"_id": svc.Department().ID.String()}, departments.updates[0].filter)
	assert.True(t, departments.updates[0].upsert)

	require.Len(t, clinicians.updates, 1)
	assert.Equal(t, bson.M{"_id": c.ID.String()}, clinicians.updates[0].filter)
	assert.Equal(t, c.Number, clinicians.updates[0].set.(bson.M)["number"])

	// visit-created, event-started, event-completed, event-started
	require.Len(t, visits.updates, 4)
	last := visits.updates[3]
	assert.Equal(t, bson.M{"_id": v.ID.String()}, last.filter)
	doc := last.set.(visitDocument)
	assert.Equal(t, string(sim.StateBeingSeen), doc.State)
	require.Len(t, doc.Events, 2)
	assert.Equal(t, "Triage", doc.Events[0].Kind)
	assert.NotNil(t, doc.Events[0].Completion)
	assert.Len(t, doc.Events[0].Coding, 2)
	assert.Equal(t, v.Patient.NHSNumber, doc.Patient.NHSNumber)
	assert.Equal(t, v.PriorityCode(), doc.Priority)
}

func TestStore_WrapsCollectionErrors(t *testing.T) {
	down := errors.New("no reachable servers")
	store := NewStore(&fakeCollection{err: down}, &fakeCollection{}, &fakeCollection{})
	env := sink.NewEnvelope(sim.Notification{Kind: sim.NotifyDepartmentCreated, At: testStart, Department: sim.NewDepartment(nil)})

	err := store.Deliver(context.Background(), env)
	assert.ErrorIs(t, err, down)
}

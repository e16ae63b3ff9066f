// Package record keeps a clinical record of the simulated department in MongoDB.
//
// Each envelope upserts the document it describes, so the store always holds the latest
// known state of every department, clinician and visit.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sink"
)

const (
	departmentsCollection = "departments"
	cliniciansCollection  = "clinicians"
	visitsCollection      = "visits"
)

// Config configures the MongoDB connection. The sink is disabled when URI is empty.
type Config struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database" validate:"required_with=URI"`
}

// Enabled reports whether a MongoDB URI is configured.
func (c Config) Enabled() bool {
	return c.URI != ""
}

// Collection is the subset of *mongo.Collection the store uses.
type Collection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type conceptDocument struct {
	ID          string `bson:"id"`
	Codeset     string `bson:"codeset"`
	Code        string `bson:"code"`
	Description string `bson:"description"`
}

type eventDocument struct {
	ID                 string            `bson:"id"`
	Kind               string            `bson:"kind"`
	ClinicianID        string            `bson:"clinician_id"`
	ClinicianNumber    string            `bson:"clinician_number"`
	DurationMinutes    int               `bson:"duration_minutes"`
	Start              time.Time         `bson:"start"`
	ExpectedCompletion time.Time         `bson:"expected_completion"`
	Completion         *time.Time        `bson:"completion,omitempty"`
	Coding             []conceptDocument `bson:"coding"`
}

type patientDocument struct {
	ID          string    `bson:"id"`
	NHSNumber   string    `bson:"nhs_number"`
	FirstName   string    `bson:"first_name"`
	Surname     string    `bson:"surname"`
	DateOfBirth time.Time `bson:"date_of_birth"`
	Address     string    `bson:"address"`
	Postcode    string    `bson:"postcode"`
}

type visitDocument struct {
	DepartmentID string          `bson:"department_id"`
	Patient      patientDocument `bson:"patient"`
	Start        time.Time       `bson:"start"`
	State        string          `bson:"state"`
	Priority     string          `bson:"priority,omitempty"`
	Events       []eventDocument `bson:"events"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

// Store upserts department, clinician and visit documents.
type Store struct {
	departments Collection
	clinicians  Collection
	visits      Collection
}

// NewStore wraps the three collections.
func NewStore(departments, clinicians, visits Collection) *Store {
	return &Store{departments: departments, clinicians: clinicians, visits: visits}
}

func (s *Store) Name() string { return "mongo" }

func (s *Store) Deliver(ctx context.Context, env sink.Envelope) error {
	switch env.Kind {
	case sim.NotifyDepartmentCreated:
		return s.upsert(ctx, s.departments, env.DepartmentID, bson.M{
			"created_at": env.At,
		})
	case sim.NotifyClinicianAdded:
		if env.Clinician == nil {
			return nil
		}
		c := env.Clinician
		return s.upsert(ctx, s.clinicians, c.ID, bson.M{
			"department_id": env.DepartmentID,
			"number":        c.Number,
			"first_name":    c.Name.FirstName,
			"surname":       c.Name.Surname,
			"added_at":      env.At,
		})
	case sim.NotifyVisitCreated, sim.NotifyEventStarted, sim.NotifyEventCompleted:
		if env.Visit == nil {
			return nil
		}
		return s.upsert(ctx, s.visits, env.Visit.ID, visitToDocument(*env.Visit, env.At))
	default:
		logrus.Debugf("Record store ignoring %s envelope.", env.Kind)
		return nil
	}
}

func (s *Store) upsert(ctx context.Context, c Collection, id string, doc interface{}) error {
	_, err := c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", id, err)
	}
	return nil
}

func visitToDocument(v sim.VisitSnapshot, at time.Time) visitDocument {
	doc := visitDocument{
		DepartmentID: v.DepartmentID,
		Patient: patientDocument{
			ID:          v.Patient.ID,
			NHSNumber:   v.Patient.NHSNumber,
			FirstName:   v.Patient.Name.FirstName,
			Surname:     v.Patient.Name.Surname,
			DateOfBirth: v.Patient.DateOfBirth,
			Address:     v.Patient.Address.FullAddress(),
			Postcode:    v.Patient.Address.Postcode,
		},
		Start:     v.Start,
		State:     string(v.State),
		Priority:  v.Priority,
		Events:    make([]eventDocument, 0, len(v.Events)),
		UpdatedAt: at,
	}
	for _, e := range v.Events {
		ed := eventDocument{
			ID:                 e.ID,
			Kind:               e.Kind,
			ClinicianID:        e.Clinician.ID,
			ClinicianNumber:    e.Clinician.Number,
			DurationMinutes:    e.Duration,
			Start:              e.Start,
			ExpectedCompletion: e.ExpectedCompletion,
			Completion:         e.Completion,
			Coding:             make([]conceptDocument, 0, len(e.Coding)),
		}
		for _, c := range e.Coding {
			ed.Coding = append(ed.Coding, conceptDocument{
				ID:          c.ID.String(),
				Codeset:     string(c.Codeset),
				Code:        c.Code,
				Description: c.Description,
			})
		}
		doc.Events = append(doc.Events, ed)
	}
	return doc
}

// Connect opens a client, pings it and returns a Store over the configured database plus
// a function that disconnects.
func Connect(ctx context.Context, cfg Config) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo database: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping mongo database: %w", err)
	}
	logrus.Infof("Successfully connected to mongo database %s.", cfg.Database)

	db := client.Database(cfg.Database)
	store := NewStore(
		db.Collection(departmentsCollection),
		db.Collection(cliniciansCollection),
		db.Collection(visitsCollection),
	)
	return store, client.Disconnect, nil
}

package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testStart is the simulated time every test clock starts at.
var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// constRand always draws the same index, clamped into range. constRand(0) yields the
// lower bound of every draw; a large value yields the upper bound minus one.
type constRand int

func (c constRand) Intn(n int) int {
	if int(c) >= n {
		return n - 1
	}
	return int(c)
}

// scriptedRand replays values in order, each clamped into range, then repeats the last.
type scriptedRand struct {
	values []int
	calls  []int // n of every call
}

func (s *scriptedRand) Intn(n int) int {
	s.calls = append(s.calls, n)
	i := len(s.calls) - 1
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	v := s.values[i]
	if v >= n {
		return n - 1
	}
	return v
}

var testAddress = Address{
	Street:   "1 High Street",
	City:     "Leeds",
	County:   "West Yorkshire",
	Country:  "England",
	Postcode: "LS1 4AB",
}

func newTestPatient(t *testing.T, dob time.Time) *Patient {
	t.Helper()
	p, err := NewPatient("9434765919", Name{FirstName: "Ada", Surname: "Lovelace"}, dob, testAddress)
	require.NoError(t, err)
	return p
}

// newTestClinician builds a clinician whose durations and coding both draw index pick.
// For triage, pick selects the priority: 0=EM, 1=UR, 2=ST, 3=NU.
func newTestClinician(t *testing.T, number string, pick int) *Clinician {
	t.Helper()
	c, err := NewClinician(number, Name{FirstName: "Grace", Surname: "Hopper"}, constRand(pick), NewVocabulary(constRand(pick)))
	require.NoError(t, err)
	return c
}

// triagedVisit builds a visit whose completed triage recorded priority code.
func triagedVisit(code string) *Visit {
	v := &Visit{Patient: &Patient{DateOfBirth: testStart.AddDate(-40, 0, 0)}}
	done := testStart
	v.Events = []*Event{{
		Kind:       KindTriage,
		Visit:      v,
		Coding:     []CodedConcept{{Codeset: CodesetPriority, Code: code}},
		completion: &done,
	}}
	return v
}

// untriagedVisit builds a visit with no events.
func untriagedVisit() *Visit {
	return &Visit{Patient: &Patient{DateOfBirth: testStart.AddDate(-40, 0, 0)}}
}

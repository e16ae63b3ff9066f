package sim

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidNHSNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"9434765919", true},
		{"4010232137", true},
		{"9434765918", false}, // wrong check digit
		{"943476591", false},  // too short
		{"94347659190", false},
		{"94347a5919", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidNHSNumber(tt.in))
		})
	}
}

func TestNHSCheckDigit_RemainderTenIsInvalid(t *testing.T) {
	// 1*10 = 10, 10 mod 11 = 10, 11-10 = 1 -> valid check digit 1
	check, ok := nhsCheckDigit([]int{1, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.True(t, ok)
	assert.Equal(t, 1, check)

	// 1*9 = 9 -> 11-9 = 2
	check, ok = nhsCheckDigit([]int{0, 1, 0, 0, 0, 0, 0, 0, 0})
	assert.True(t, ok)
	assert.Equal(t, 2, check)

	// 1*10 + 1*2 = 12, 12 mod 11 = 1 -> 10, no valid check digit
	_, ok = nhsCheckDigit([]int{1, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.False(t, ok)

	// all zeros: remainder 0 -> 11 -> check digit 0
	check, ok = nhsCheckDigit(make([]int, 9))
	assert.True(t, ok)
	assert.Equal(t, 0, check)
}

func TestPersonGenerator_ProducesValidIdentities(t *testing.T) {
	g := NewPersonGenerator(42)
	clinicianNumber := regexp.MustCompile(`^C[1-9][0-9]{5}$`)

	for i := 0; i < 50; i++ {
		nhs := g.NHSNumber()
		assert.True(t, ValidNHSNumber(nhs), "invalid NHS number %q", nhs)
		assert.Regexp(t, clinicianNumber, g.ClinicianNumber())

		dob := g.DateOfBirth(testStart)
		assert.False(t, dob.After(testStart), "date of birth %s in the future", dob)
		assert.False(t, dob.Before(testStart.AddDate(-maxPatientAge-1, 0, 0)), "date of birth %s too old", dob)
	}
}

func TestPersonGenerator_SameSeedSameIdentities(t *testing.T) {
	a := NewPersonGenerator(7)
	b := NewPersonGenerator(7)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Name(), b.Name())
		assert.Equal(t, a.NHSNumber(), b.NHSNumber())
		assert.Equal(t, a.Address(), b.Address())
	}
}

func TestPersonGenerator_Patient(t *testing.T) {
	g := NewPersonGenerator(1)

	p, err := g.Patient(testStart)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Name.FirstName)
	assert.NotEmpty(t, p.Address.Postcode)
	assert.GreaterOrEqual(t, p.Age(testStart), 0)
	assert.LessOrEqual(t, p.Age(testStart), maxPatientAge)
}

func TestPersonGenerator_Clinician(t *testing.T) {
	g := NewPersonGenerator(1)

	c, err := g.Clinician(constRand(0), NewVocabulary(constRand(0)))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Number)
	assert.Contains(t, c.String(), c.Name.FullName())

	_, err = g.Clinician(nil, NewVocabulary(constRand(0)))
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

func TestPatient_AgeIsCalendarYearDifference(t *testing.T) {
	// GIVEN a patient born late in the year
	p := newTestPatient(t, time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC))

	// THEN the age ignores whether the birthday has passed
	assert.Equal(t, 24, p.Age(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, p.Age(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestNewPatient_RejectsInvalidIdentity(t *testing.T) {
	dob := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	name := Name{FirstName: "Ada", Surname: "Lovelace"}

	tests := []struct {
		name    string
		nhs     string
		who     Name
		dob     time.Time
		address Address
	}{
		{"short NHS number", "123", name, dob, testAddress},
		{"non-numeric NHS number", "94347659AB", name, dob, testAddress},
		{"missing surname", "9434765919", Name{FirstName: "Ada"}, dob, testAddress},
		{"missing date of birth", "9434765919", name, time.Time{}, testAddress},
		{"missing postcode", "9434765919", name, dob, Address{Street: "x", City: "y", County: "z", Country: "England"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatient(tt.nhs, tt.who, tt.dob, tt.address)
			assert.ErrorIs(t, err, ErrInvalidEntity)
		})
	}
}

package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var ukCounties = []string{
	"Bedfordshire", "Cheshire", "Cornwall", "Cumbria", "Devon", "Dorset", "Essex",
	"Gloucestershire", "Hampshire", "Kent", "Lancashire", "Norfolk", "Suffolk",
	"Surrey", "West Yorkshire", "Fife", "Powys", "County Antrim",
}

var ukCountries = []string{"England", "Scotland", "Wales", "Northern Ireland"}

// maxPatientAge bounds generated dates of birth.
const maxPatientAge = 100

// PersonGenerator produces synthetic clinicians and patients.
type PersonGenerator struct {
	faker *gofakeit.Faker
}

// NewPersonGenerator seeds a generator. Equal seeds produce equal people.
func NewPersonGenerator(seed int64) *PersonGenerator {
	return &PersonGenerator{faker: gofakeit.New(seed)}
}

// Name draws a first name and surname.
func (g *PersonGenerator) Name() Name {
	return Name{FirstName: g.faker.FirstName(), Surname: g.faker.LastName()}
}

// ClinicianNumber draws a professional number in C100000..C999998.
func (g *PersonGenerator) ClinicianNumber() string {
	return fmt.Sprintf("C%d", g.faker.Number(100000, 999998))
}

// NHSNumber draws a ten-digit number with a valid modulus 11 check digit.
func (g *PersonGenerator) NHSNumber() string {
	for {
		digits := make([]int, 9)
		for i := range digits {
			digits[i] = g.faker.Number(0, 9)
		}
		check, ok := nhsCheckDigit(digits)
		if !ok {
			continue
		}
		var b strings.Builder
		for _, d := range digits {
			b.WriteByte(byte('0' + d))
		}
		b.WriteByte(byte('0' + check))
		return b.String()
	}
}

// nhsCheckDigit weights the nine leading digits 10..2. A remainder yielding 10 has no
// valid check digit.
func nhsCheckDigit(digits []int) (int, bool) {
	sum := 0
	for i, d := range digits {
		sum += d * (10 - i)
	}
	check := 11 - sum%11
	switch check {
	case 11:
		return 0, true
	case 10:
		return 0, false
	default:
		return check, true
	}
}

// ValidNHSNumber reports whether s is ten digits with a correct check digit.
func ValidNHSNumber(s string) bool {
	if len(s) != 10 {
		return false
	}
	digits := make([]int, 10)
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	check, ok := nhsCheckDigit(digits[:9])
	return ok && check == digits[9]
}

// Address draws a UK address.
func (g *PersonGenerator) Address() Address {
	postcode := strings.ToUpper(g.faker.Lexify("??")) + g.faker.Numerify("#") + " " +
		g.faker.Numerify("#") + strings.ToUpper(g.faker.Lexify("??"))
	return Address{
		Street:   g.faker.Street(),
		City:     g.faker.City(),
		County:   g.faker.RandomString(ukCounties),
		Country:  g.faker.RandomString(ukCountries),
		Postcode: postcode,
	}
}

// DateOfBirth draws a date within the last maxPatientAge years of asOf.
func (g *PersonGenerator) DateOfBirth(asOf time.Time) time.Time {
	dob := g.faker.DateRange(asOf.AddDate(-maxPatientAge, 0, 0), asOf)
	return time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
}

// Clinician builds a clinician with a generated identity.
func (g *PersonGenerator) Clinician(durations Randomness, vocab *Vocabulary) (*Clinician, error) {
	return NewClinician(g.ClinicianNumber(), g.Name(), durations, vocab)
}

// Patient builds a patient with a generated identity.
func (g *PersonGenerator) Patient(asOf time.Time) (*Patient, error) {
	return NewPatient(g.NHSNumber(), g.Name(), g.DateOfBirth(asOf), g.Address())
}

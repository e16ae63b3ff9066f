package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Name is a person's name.
type Name struct {
	FirstName string `json:"first_name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
}

// FullName returns "First Surname".
func (n Name) FullName() string {
	return n.FirstName + " " + n.Surname
}

// Address is a UK postal address.
type Address struct {
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	County   string `json:"county" validate:"required"`
	Country  string `json:"country" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
}

// FullAddress joins every address line.
func (a Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s", a.Street, a.City, a.County, a.Country, a.Postcode)
}

// Patient is a member of the catchment population. Immutable after creation; a returning
// patient reuses the same instance.
type Patient struct {
	ID          uuid.UUID
	NHSNumber   string `validate:"required,len=10,numeric"`
	Name        Name
	DateOfBirth time.Time `validate:"required"`
	Address     Address
}

// NewPatient validates and builds a Patient.
func NewPatient(nhsNumber string, name Name, dateOfBirth time.Time, address Address) (*Patient, error) {
	p := &Patient{
		ID:          uuid.New(),
		NHSNumber:   nhsNumber,
		Name:        name,
		DateOfBirth: dateOfBirth,
		Address:     address,
	}
	if err := validateEntity("patient", p); err != nil {
		return nil, err
	}
	return p, nil
}

// Age is the calendar-year difference between asOf and the date of birth. It does not
// account for whether the birthday has passed; duration brackets are tuned against this.
func (p *Patient) Age(asOf time.Time) int {
	return asOf.Year() - p.DateOfBirth.Year()
}

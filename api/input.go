package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type OutletInput struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Latitude     float64 `json:"latitude" validate:"latitude"`
	Longitude    float64 `json:"longitude" validate:"longitude"`
	RadiusMeters float64 `json:"radius" validate:"gt=0,lte=10000"`
	ManagerID    *int64  `json:"manager,omitempty" validate:"omitempty,gt=0"`
	AgencyID     *int64  `json:"agency,omitempty" validate:"omitempty,gt=0"`
	Status       int     `json:"status" validate:"oneof=0 1"`
}

type EmployeeInput struct {
	FirstName    string  `json:"first_name" validate:"required,max=80"`
	LastName     string  `json:"last_name" validate:"max=80"`
	FullName     string  `json:"fullname,omitempty" validate:"max=160"`
	OutletIDs    []int64 `json:"outlets" validate:"required,min=1,dive,gt=0"`
	AgencyID     *int64  `json:"agency,omitempty" validate:"omitempty,gt=0"`
	GroupID      *int64  `json:"group,omitempty" validate:"omitempty,gt=0"`
	InactiveDate string  `json:"inactive_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type DeviceAssignment struct {
	DeviceID   string `json:"device_id" validate:"required,max=64"`
	OutletID   int64  `json:"outlet" validate:"required,gt=0"`
	EmployeeID int64  `json:"employee,omitempty" validate:"omitempty,gt=0"`
}

type leaveStatusUpdate struct {
	Status string `json:"status"`
}

type employeeDeactivation struct {
	InactiveDate string `json:"inactive_date"`
}

// validateInput checks struct tags before any request is built.
func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

package schema

import (
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// use a single instance of Validate, it caches struct info
var RequestValidate *validator.Validate

func init() {
	RequestValidate = validator.New(validator.WithRequiredStructEnabled())

	// Function to check if a string is in the YYYY-MM-DD format
	errDate := RequestValidate.RegisterValidation("isValidDate", func(fl validator.FieldLevel) bool {
		const layout = "2006-01-02"
		value := fl.Field().String()
		_, err := time.Parse(layout, value)
		return err == nil
	})
	if errDate != nil {
		return
	}

	// Function to check if a port name is one the schedule board serves
	errPort := RequestValidate.RegisterValidation("isKnownPort", func(fl validator.FieldLevel) bool {
		return slices.Contains(KnownPorts, fl.Field().String())
	})
	if errPort != nil {
		return
	}
}

// Define the structs with field validations using Go tags
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SaveRowsRequest struct {
	Rows []ManifestRow `json:"rows" validate:"required,min=1,dive"`
}

type UpdateRowRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

type DeleteRowsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type VesselLogRequest struct {
	VesselName string `json:"vesselName" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

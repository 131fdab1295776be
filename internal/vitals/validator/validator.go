package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
)

const (
	MaxNameLength = 100
	MinAge        = 1
	MaxAge        = 130
	MinHeight     = 30
	MaxHeight     = 272
	MinWeight     = 1
	MaxWeight     = 500
)

// ValidateProfile checks every field of a patient profile.
func ValidateProfile(p common.Profile) models.ValidationState {
	state := models.ValidationState{
		Errors: make(map[string]string),
	}

	if err := validateName(p.Name); err != nil {
		state.Errors["name"] = err.Error()
	}
	if err := validateRange("age", float64(p.Age), MinAge, MaxAge); err != nil {
		state.Errors["age"] = err.Error()
	}
	if err := validateRange("height", p.Height, MinHeight, MaxHeight); err != nil {
		state.Errors["height"] = err.Error()
	}
	if err := validateRange("weight", p.Weight, MinWeight, MaxWeight); err != nil {
		state.Errors["weight"] = err.Error()
	}

	state.IsValid = len(state.Errors) == 0
	return state
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name cannot be longer than %d characters", MaxNameLength)
	}
	return nil
}

func validateRange(field string, v, lo, hi float64) error {
	if v == 0 {
		return fmt.Errorf("%s is required", field)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %g and %g", field, lo, hi)
	}
	return nil
}

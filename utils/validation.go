package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxTenantIDLength is the longest tenant id accepted on onboarding
const MaxTenantIDLength = 50

var (
	// validate is the singleton validator instance
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	// report fields by their JSON names so messages match the wire payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details.
// Missing lists the dotted paths of absent required fields in declaration order.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Missing []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	var missing []string
	for _, err := range errs {
		field := fieldPath(err.Namespace())
		tag := err.Tag()

		switch tag {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
			missing = append(missing, field)
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, tag)
		}
	}

	message := "Validation failed"
	if len(missing) > 0 {
		message = MissingFieldsMessage(missing)
	}

	return &ValidationError{
		Message: message,
		Fields:  fields,
		Missing: missing,
	}
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// MissingFieldsMessage formats the adapter's "Missing a,b in request body" message
func MissingFieldsMessage(fields []string) string {
	return fmt.Sprintf("Missing %s in request body", strings.Join(fields, ","))
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// GetMissingFields extracts the missing required field paths from a ValidationError
func GetMissingFields(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Missing
	}
	return nil
}

// ValidateTenantID checks a tenant id is non-empty, ASCII and at most MaxTenantIDLength bytes
func ValidateTenantID(tenantID string) error {
	if tenantID == "" {
		return errors.New("tenant id is required")
	}
	if len(tenantID) > MaxTenantIDLength {
		return fmt.Errorf("tenant id must be at most %d characters", MaxTenantIDLength)
	}
	for i := 0; i < len(tenantID); i++ {
		if tenantID[i] > 0x7F {
			return errors.New("tenant id must be ASCII")
		}
	}
	return nil
}

// ValidateRequired validates that a string is not empty
func ValidateRequired(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/eventstock/eventstock/internal/core/query"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func compile(schema map[string]interface{}) (*gojsonschema.Schema, error) {
	if len(schema) == 0 {
		// No schema defined, allow any data
		return nil, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

func check(s *gojsonschema.Schema, record query.Record, prefix string) ([]ValidationError, error) {
	result, err := s.Validate(gojsonschema.NewGoLoader(map[string]interface{}(record)))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	var out []ValidationError
	for _, desc := range result.Errors() {
		out = append(out, ValidationError{
			Field:   prefix + desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// Validate checks one record against a collection schema.
func (v *Validator) Validate(record query.Record, schema map[string]interface{}) error {
	s, err := compile(schema)
	if err != nil || s == nil {
		return err
	}

	errs, err := check(s, record, "")
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// ValidateAll checks a whole collection. Field names are prefixed with the
// record position, e.g. "[3].nazwa".
func (v *Validator) ValidateAll(records []query.Record, schema map[string]interface{}) error {
	s, err := compile(schema)
	if err != nil || s == nil {
		return err
	}

	var all []ValidationError
	for i, r := range records {
		errs, err := check(s, r, fmt.Sprintf("[%d].", i))
		if err != nil {
			return err
		}
		all = append(all, errs...)
	}
	if len(all) > 0 {
		return &ValidationErrors{Errors: all}
	}
	return nil
}

func (v *Validator) ValidatePartial(record query.Record, schema map[string]interface{}) error {
	// For partial updates, remove required constraint
	if len(schema) == 0 {
		return nil
	}

	partialSchema := make(map[string]interface{})
	for k, val := range schema {
		if k != "required" {
			partialSchema[k] = val
		}
	}

	return v.Validate(record, partialSchema)
}

func IsValidationError(err error) bool {
	var ve *ValidationErrors
	return errors.As(err, &ve)
}

func GetValidationErrors(err error) *ValidationErrors {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

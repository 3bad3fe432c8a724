// Package validator checks user-entered movie fields before they reach the store.
package validator

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldError is a single rejected field.
type FieldError struct {
	Field string
	Err   error
}

// ValidationError lists the rejected fields in the order they were checked.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Err.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation or one of the field errors.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	for _, f := range e.Fields {
		if errors.Is(f.Err, target) {
			return true
		}
	}
	return false
}

// Field returns the error recorded for field, or nil.
func (e *ValidationError) Field(field string) error {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Err
		}
	}
	return nil
}

// Validator collects field errors.
type Validator struct {
	Errors []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Valid returns true if no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records err for field unless the field already has one.
func (v *Validator) AddError(field string, err error) {
	for _, f := range v.Errors {
		if f.Field == field {
			return
		}
	}
	v.Errors = append(v.Errors, FieldError{Field: field, Err: err})
}

// Check records err for field when ok is false.
func (v *Validator) Check(ok bool, field string, err error) {
	if !ok {
		v.AddError(field, err)
	}
}

// Err returns nil when valid, otherwise a *ValidationError.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	fields := make([]FieldError, len(v.Errors))
	copy(fields, v.Errors)
	return &ValidationError{Fields: fields}
}

// In returns true if value is in list.
func In(value string, list ...string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}

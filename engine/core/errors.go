package core

import (
	"fmt"
	"strings"
)

// ValidationError reports authoring mistakes: missing required fields,
// empty labels. Rejected before any network call is made.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// CatalogError wraps failures talking to the action catalog. It never
// corrupts local state.
type CatalogError struct {
	Op  string
	Err error
}

func NewCatalogError(op string, err error) *CatalogError {
	return &CatalogError{Op: op, Err: err}
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps local store failures. It aborts the operation
// before any remote registration is attempted.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// RegistrationError wraps agent platform failures. Fatal on create,
// tolerated on update and delete.
type RegistrationError struct {
	Op  string
	Err error
}

func NewRegistrationError(op string, err error) *RegistrationError {
	return &RegistrationError{Op: op, Err: err}
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration %s failed: %v", e.Op, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

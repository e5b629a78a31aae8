package domain

import "errors"

var (
	ErrArtefactNotFound = errors.New("artefact not found")
)

// ValidationError reports malformed or incomplete input. Detected before any
// mutation; maps to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// PolicyError reports a governance rule violation on otherwise well-formed
// input. Detected before any mutation; maps to HTTP 400.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

func Validationf(reason string) error { return &ValidationError{Reason: reason} }

func Policyf(reason string) error { return &PolicyError{Reason: reason} }

package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a concurrent writer committed first.
	// The caller should reload and retry the read-modify-write.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedSource indicates no normaliser exists for a source kind.
	ErrUnsupportedSource = errors.New("unsupported source kind")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrOutsideRoot indicates a document path escapes the vault root.
	ErrOutsideRoot = errors.New("path outside document root")

	// Flow error taxonomy. Typed errors below match these via errors.Is.

	// ErrSchema indicates malformed external input.
	ErrSchema = errors.New("schema error")

	// ErrValidation indicates missing required user input.
	ErrValidation = errors.New("validation error")

	// ErrAnalysis indicates the external analysis call failed or timed out.
	ErrAnalysis = errors.New("analysis error")

	// ErrPersistence indicates a state or document write failed.
	ErrPersistence = errors.New("persistence error")
)

// SchemaError reports malformed external input. Field is the dotted
// path of the offending value within the payload.
type SchemaError struct {
	Source SourceKind
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema error: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema error: %s payload field %q: %s", e.Source, e.Field, e.Reason)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ValidationError reports missing or invalid user input for a flow.
type ValidationError struct {
	Flow    FlowKind
	Date    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s flow for %s: %s", e.Flow, e.Date, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AnalysisError reports a failed or timed-out analysis call.
// Flows abort before any write when they see this error.
type AnalysisError struct {
	Flow FlowKind
	Date string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s flow for %s: analysis failed: %v", e.Flow, e.Date, e.Err)
}

// Is reports whether target is ErrAnalysis.
func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysis
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed state or document write.
// Pending carries the computed result so the write can be retried
// without repeating analysis. It is nil when nothing was computed.
type PersistenceError struct {
	Flow    FlowKind
	Date    string
	Target  string
	Err     error
	Pending *FlowResult
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s flow for %s: write %s: %v", e.Flow, e.Date, e.Target, e.Err)
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by caller input
// rather than by the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSchema) || errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput)
}

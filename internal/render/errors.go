package render

import (
	"errors"
	"fmt"
)

// Common rendering errors
var (
	// ErrTableNotFound is returned when no table in the document body
	// matches the item-block anchor signature. Fatal for invoices; credit
	// notes degrade to rendering without item rows.
	ErrTableNotFound = errors.New("no table matches the item anchor signature")

	// ErrExportFailed is returned when fixed-format export yields no result.
	ErrExportFailed = errors.New("document export failed")
)

// RenderError wraps errors with context about the rendering step that failed.
// There is no partial-success path: a failure at any step aborts the render
// and surfaces the original error, with no rollback of an already-made
// document copy.
type RenderError struct {
	// Op is the step that failed (e.g. "CopyTemplate", "FillItemTable").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("render: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("render: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RenderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRenderError creates a new RenderError for the given step.
func NewRenderError(op string, err error, details string) *RenderError {
	return &RenderError{Op: op, Err: err, Details: details}
}

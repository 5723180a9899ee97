package types

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Validation errors are never retried; transient
// provider errors are retried locally and only surface after retries are
// exhausted.
var (
	ErrLocationUnresolved = errors.New("location unresolved")
	ErrImageryUnavailable = errors.New("imagery unavailable")
	ErrInvalidBoundary    = errors.New("invalid boundary")
	ErrNarrationMismatch  = errors.New("narration mismatch")
	ErrInvalidReorder     = errors.New("invalid reorder")
	ErrPipelineTimeout    = errors.New("pipeline timeout")
	ErrRenderFailed       = errors.New("render failed")
)

// StageError tags a failure with the pipeline stage and the identifier
// (address, fingerprint, asset id...) it was working on, so a caller can
// retry just that stage.
type StageError struct {
	Stage string
	Ref   string
	Err   error
}

func (e *StageError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Ref, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with stage context.
func NewStageError(stage, ref string, err error) *StageError {
	return &StageError{Stage: stage, Ref: ref, Err: err}
}

// Transient reports whether err is worth retrying. Anything marked
// non-transient (bad key, out of coverage, validation) fails immediately.
func Transient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// TransientError wraps provider failures that a retry might fix
// (timeouts, 5xx, rate limits).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

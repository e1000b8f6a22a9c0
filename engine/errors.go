package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ensemble/core"
)

// ErrInvalidConfig is returned by Run when budgets or the lineup are invalid.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// RunError aborts a run. It names the stage or evaluator that failed and
// carries the state accumulated before the failure.
type RunError struct {
	RunID string
	// Stage is a stage name or one of the evaluator step names.
	Stage      string
	Err        error
	Transcript []core.Entry
	// Results holds the descriptive entries produced so far (no final selection).
	Results []core.ResultEntry
}

// Error implements error.
func (e *RunError) Error() string {
	return fmt.Sprintf("run %s aborted in %s: %v", e.RunID, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error { return e.Err }

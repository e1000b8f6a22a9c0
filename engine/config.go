package engine

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the budgets and limits of a run.
type Config struct {
	// MaxIterations bounds the number of refinement iterations.
	MaxIterations int `validate:"gt=0"`

	// TimeLimit bounds the wall-clock time of the refinement loop, measured
	// from the start of the run.
	TimeLimit time.Duration `validate:"gt=0"`

	// MaxRefiners caps how many creatives the selector may pick per
	// iteration. 0 disables the cap.
	MaxRefiners int `validate:"gte=0"`

	// HistoryLimit keeps only the most recent N replies in each prompt's
	// history section. 0 keeps all of them.
	HistoryLimit int `validate:"gte=0"`

	// MaxModelCalls caps the number of model calls per run. 0 disables the cap.
	MaxModelCalls int `validate:"gte=0"`

	// EnforceDeadline bounds loop-body calls by the remaining time budget.
	EnforceDeadline bool
}

// DefaultConfig provides the reference budgets.
//
// Configuration values:
//   - MaxIterations: 2
//   - TimeLimit: 5 minutes
//   - MaxRefiners: 2
var DefaultConfig = Config{
	MaxIterations: 2,
	TimeLimit:     5 * time.Minute,
	MaxRefiners:   2,
}

var validate = validator.New()

// Validate checks the configured budgets.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

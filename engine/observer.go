package engine

import (
	"strings"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/logging"
)

// LoggingObserver adapts run events to structured log records.
//
// Lifecycle events (run, stage, loop, final) are logged at info level;
// per-entry and decision events at debug level; skips at warn level and
// failures at error level.
type LoggingObserver struct {
	logger logging.Logger
}

// NewLoggingObserver creates an observer writing to logger.
func NewLoggingObserver(logger logging.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logging.OrNoOp(logger)}
}

// OnEvent implements core.Observer.
func (o *LoggingObserver) OnEvent(e core.Event) {
	args := []any{"run_id", e.RunID}
	if e.Stage != "" {
		args = append(args, "stage", e.Stage)
	}
	if e.Iteration > 0 {
		args = append(args, "iteration", e.Iteration)
	}

	switch e.Type {
	case core.EventRunStarted:
		o.logger.Info("Run started", append(args, "detail", e.Detail)...)
	case core.EventStageStarted:
		o.logger.Info("Stage started", args...)
	case core.EventEntryAppended:
		if e.Entry != nil {
			args = append(args, "sender", e.Entry.SenderID, "chars", len(e.Entry.Content))
		}
		o.logger.Debug("Entry appended", args...)
	case core.EventParticipantSkipped:
		o.logger.Warn("Participant skipped", append(args, "detail", e.Detail)...)
	case core.EventIterationStarted:
		o.logger.Info("Iteration started", args...)
	case core.EventDecision:
		args = append(args, "decision", e.Decision, "outcome", e.Outcome)
		if len(e.Selected) > 0 {
			args = append(args, "selected", strings.Join(e.Selected, ", "))
		}
		o.logger.Debug("Decision", args...)
	case core.EventLoopTerminated:
		o.logger.Info("Refinement loop terminated", append(args, "reason", e.Detail)...)
	case core.EventFinalSelected:
		o.logger.Info("Final description selected", args...)
	case core.EventRunFailed:
		o.logger.Error("Run failed", append(args, "error", e.Detail)...)
	default:
		o.logger.Debug("Event", append(args, "type", string(e.Type))...)
	}
}

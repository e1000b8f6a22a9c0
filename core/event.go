package core

import "time"

// EventType identifies the lifecycle point an Event reports.
type EventType string

const (
	// EventRunStarted is emitted once before the first stage.
	EventRunStarted EventType = "run_started"
	// EventStageStarted is emitted after a stage marker has been appended.
	EventStageStarted EventType = "stage_started"
	// EventEntryAppended is emitted for every participant reply appended.
	EventEntryAppended EventType = "entry_appended"
	// EventParticipantSkipped is emitted when a stage names an unknown participant.
	EventParticipantSkipped EventType = "participant_skipped"
	// EventIterationStarted is emitted at the head of each refinement iteration.
	EventIterationStarted EventType = "iteration_started"
	// EventDecision is emitted after an evaluator has produced a decision.
	EventDecision EventType = "decision"
	// EventLoopTerminated is emitted when the refinement loop exits.
	EventLoopTerminated EventType = "loop_terminated"
	// EventFinalSelected is emitted once the final artifact is available.
	EventFinalSelected EventType = "final_selected"
	// EventRunFailed is emitted when a run aborts with an error.
	EventRunFailed EventType = "run_failed"
)

// Event is a structured notification emitted while a run progresses. After
// emission it should be treated as immutable. Only the fields relevant to
// the Type are populated.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Iteration int       `json:"iteration,omitempty"`
	Entry     *Entry    `json:"entry,omitempty"`
	// Decision names the evaluator (quality, consensus, selection).
	Decision string `json:"decision,omitempty"`
	// Outcome carries the boolean result of quality / consensus decisions.
	Outcome bool `json:"outcome,omitempty"`
	// Selected carries participant ids chosen by the selector.
	Selected []string `json:"selected,omitempty"`
	// Detail carries free-form context (skip reason, termination reason, error).
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event bound to a run.
func NewEvent(runID string, typ EventType) Event {
	return Event{RunID: runID, Type: typ, Timestamp: time.Now().UTC()}
}

// Observer receives run events. Implementations must not block for long:
// events are delivered synchronously on the orchestration goroutine.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts an ordinary function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(e Event) { f(e) }

// NoOpObserver discards all events.
type NoOpObserver struct{}

// OnEvent implements Observer.
func (NoOpObserver) OnEvent(Event) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// OnEvent implements Observer.
func (m MultiObserver) OnEvent(e Event) {
	for _, o := range m {
		if o != nil {
			o.OnEvent(e)
		}
	}
}

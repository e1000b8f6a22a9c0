package testutil

import (
	"sync"

	"github.com/hupe1980/ensemble/core"
)

// Recorder is a core.Observer capturing every event for later assertions.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
}

// OnEvent implements core.Observer.
func (r *Recorder) OnEvent(e core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(t core.EventType) []core.Event {
	var out []core.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Stages returns the stage names of StageStarted events in emission order.
func (r *Recorder) Stages() []string {
	var out []string
	for _, e := range r.OfType(core.EventStageStarted) {
		out = append(out, e.Stage)
	}
	return out
}

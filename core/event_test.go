package core

import "testing"

func TestNewEvent(t *testing.T) {
	e := NewEvent("run-1", EventStageStarted)
	if e.RunID != "run-1" || e.Type != EventStageStarted || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}
}

func TestMultiObserver(t *testing.T) {
	var got []EventType
	rec := ObserverFunc(func(e Event) { got = append(got, e.Type) })

	obs := MultiObserver{rec, nil, NoOpObserver{}, rec}
	obs.OnEvent(NewEvent("r", EventDecision))

	if len(got) != 2 || got[0] != EventDecision {
		t.Fatalf("expected event delivered twice, got %v", got)
	}
}

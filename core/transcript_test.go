package core

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func buildTranscript(t *testing.T, entries ...Entry) *Transcript {
	t.Helper()
	tr := NewTranscript()
	for _, e := range entries {
		if err := tr.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tr
}

func senders(seq []Entry) []string {
	out := make([]string, len(seq))
	for i, e := range seq {
		out[i] = e.SenderID
	}
	return out
}

func TestTranscript_AppendRejectsEmptySender(t *testing.T) {
	tr := NewTranscript()
	if err := tr.Append(NewEntry("", "x")); !errors.Is(err, ErrEmptySender) {
		t.Fatalf("expected ErrEmptySender, got %v", err)
	}
	if tr.Len() != 0 {
		t.Fatalf("rejected entry must not be stored")
	}
}

func TestTranscript_EntriesIsCopy(t *testing.T) {
	tr := buildTranscript(t, NewEntry("a", "one"))
	got := tr.Entries()
	got[0].Content = "mutated"

	if tr.Entries()[0].Content != "one" {
		t.Fatal("Entries must return a defensive copy")
	}
}

func TestTranscript_EntriesWhere(t *testing.T) {
	tr := buildTranscript(t,
		NewEntry(SystemSender, "--- Visual Analysis Stage ---\nlook"),
		NewEntry("analyst", "red"),
		NewEntry("coord", "feedback"),
		NewEntry("poet", "verse"),
	)

	seq := tr.EntriesWhere(Descriptive("coord"))
	first := slices.Collect(seq)
	second := slices.Collect(seq)

	if !slices.Equal(senders(first), []string{"analyst", "poet"}) {
		t.Fatalf("unexpected entries: %v", senders(first))
	}
	if !slices.Equal(senders(first), senders(second)) {
		t.Fatal("sequence must be restartable")
	}
	if tr.Len() != 4 {
		t.Fatal("iteration must not mutate the transcript")
	}

	// early break
	n := 0
	for range tr.EntriesWhere(nil) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected early termination, got %d", n)
	}
}

func TestTranscript_LastMatching(t *testing.T) {
	tr := buildTranscript(t,
		NewEntry("coord", "first"),
		NewEntry("poet", "verse"),
		NewEntry("coord", "second"),
	)

	e, ok := tr.LastMatching(FromSender("coord"))
	if !ok || e.Content != "second" {
		t.Fatalf("expected latest coordinator entry, got %+v %v", e, ok)
	}

	if _, ok := tr.LastMatching(FromSender("nobody")); ok {
		t.Fatal("expected no match")
	}
}

func TestTranscript_After(t *testing.T) {
	marker := NewEntry(SystemSender, "--- Refinement Stage ---\nrefine")
	tr := buildTranscript(t,
		NewEntry("poet", "old"),
		marker,
		NewEntry("poet", "new"),
		NewEntry("seller", "buy"),
	)

	got := slices.Collect(tr.After(marker, NotFrom(SystemSender)))
	if !slices.Equal(senders(got), []string{"poet", "seller"}) {
		t.Fatalf("unexpected entries after marker: %v", senders(got))
	}

	if n := len(slices.Collect(tr.After(NewEntry("x", "y"), nil))); n != 0 {
		t.Fatalf("unknown ref must yield nothing, got %d", n)
	}
}

func TestTranscript_AppendAssignsID(t *testing.T) {
	tr := NewTranscript()
	if err := tr.Append(Entry{SenderID: "poet", Content: "a"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tr.Append(Entry{SenderID: "poet", Content: "b"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got := tr.Entries()
	if got[0].ID == "" || got[1].ID == "" {
		t.Fatalf("expected generated IDs, got %q and %q", got[0].ID, got[1].ID)
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("expected distinct IDs, got %q twice", got[0].ID)
	}

	tail := slices.Collect(tr.After(got[0], nil))
	if len(tail) != 1 || tail[0].Content != "b" {
		t.Fatalf("unexpected entries after first: %v", tail)
	}
}

func TestTranscript_SinceLast(t *testing.T) {
	tr := NewTranscript()
	for _, e := range []Entry{
		{SenderID: SystemSender, Content: "--- Initial Stage ---"},
		{SenderID: "minimalist", Content: "a"},
		{SenderID: "poet", Content: "b"},
		{SenderID: SystemSender, Content: "--- Coordinator Review Stage ---"},
		{SenderID: "coordinator", Content: "feedback"},
	} {
		if err := tr.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	seq, ok := tr.SinceLast(StageMarker(), Descriptive("coordinator"))
	if !ok {
		t.Fatal("expected a stage marker")
	}
	if n := len(slices.Collect(seq)); n != 0 {
		t.Fatalf("expected no descriptions after the review marker, got %d", n)
	}

	seq, _ = tr.SinceLast(StageMarker(), nil)
	if got := senders(slices.Collect(seq)); !slices.Equal(got, []string{"coordinator"}) {
		t.Fatalf("unexpected entries after last marker: %v", got)
	}

	if _, ok := NewTranscript().SinceLast(StageMarker(), nil); ok {
		t.Fatal("empty transcript must not report a marker")
	}
}

func TestStageMarker(t *testing.T) {
	pred := StageMarker()
	if !pred(NewEntry(SystemSender, "--- Coordinator Review Stage ---")) {
		t.Error("expected stage marker match")
	}
	if pred(NewEntry(SystemSender, "The topic of discussion is: tees")) {
		t.Error("topic marker is not a stage marker")
	}
	if pred(NewEntry("poet", "Stage presence")) {
		t.Error("participant entries are never markers")
	}
}

func TestRender(t *testing.T) {
	tr := buildTranscript(t, NewEntry("a", "one"), NewEntry("b", "two"))
	if got := Render(tr.EntriesWhere(nil)); got != "[a]: one\n\n[b]: two" {
		t.Fatalf("unexpected render: %q", got)
	}
	if got := Render(NewTranscript().EntriesWhere(nil)); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := NewTranscript()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Append(NewEntry("p", "x"))
			_ = slices.Collect(tr.EntriesWhere(nil))
		}()
	}
	wg.Wait()
	if tr.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", tr.Len())
	}
}

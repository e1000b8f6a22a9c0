package core

import (
	"errors"
	"iter"
	"strings"
	"sync"
)

// ErrEmptySender is returned when an entry without a sender is appended.
var ErrEmptySender = errors.New("entry sender must not be empty")

// Transcript is the append-only ordered log of one orchestration run.
// Insertion order is chronological order and the causal order used for
// prompt construction. Entries are never removed, reordered or mutated.
//
// Appends are serialized by a mutex; readers observe a consistent prefix.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{entries: []Entry{}}
}

// Append adds an entry to the end of the log. Entries without an ID are
// assigned one so that After can locate them.
func (t *Transcript) Append(e Entry) error {
	if e.SenderID == "" {
		return ErrEmptySender
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
	return nil
}

// Len returns the number of entries appended so far.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// snapshot returns the current prefix. Because the log is append-only the
// returned slice is never written through by later appends.
func (t *Transcript) snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[:len(t.entries):len(t.entries)]
}

// Entries returns a defensive copy of every entry in insertion order.
func (t *Transcript) Entries() []Entry {
	s := t.snapshot()
	out := make([]Entry, len(s))
	copy(out, s)
	return out
}

// EntriesWhere returns a lazy sequence of the entries matching pred in
// insertion order. Each iteration starts from the prefix present when it
// begins, so the sequence can be ranged over repeatedly.
func (t *Transcript) EntriesWhere(pred Predicate) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range t.snapshot() {
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// LastMatching returns the most recent entry satisfying pred.
func (t *Transcript) LastMatching(pred Predicate) (Entry, bool) {
	s := t.snapshot()
	for i := len(s) - 1; i >= 0; i-- {
		if pred == nil || pred(s[i]) {
			return s[i], true
		}
	}
	return Entry{}, false
}

// After returns a lazy sequence of entries appended after ref that match
// pred. If ref is not part of the transcript the sequence is empty.
func (t *Transcript) After(ref Entry, pred Predicate) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		s := t.snapshot()
		start := -1
		for i := range s {
			if s[i].ID == ref.ID {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return
		}
		for _, e := range s[start:] {
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// SinceLast locates the most recent entry matching marker and returns the
// entries appended after it that match pred. The lookup is positional, so it
// does not depend on entry IDs. ok is false when no entry matches marker.
func (t *Transcript) SinceLast(marker, pred Predicate) (seq iter.Seq[Entry], ok bool) {
	s := t.snapshot()
	start := -1
	for i := len(s) - 1; i >= 0; i-- {
		if marker == nil || marker(s[i]) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return func(func(Entry) bool) {}, false
	}
	tail := s[start:]
	return func(yield func(Entry) bool) {
		for _, e := range tail {
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}, true
}

// Render formats entries as "[sender]: content" blocks separated by a blank line.
func Render(entries iter.Seq[Entry]) string {
	var b strings.Builder
	first := true
	for e := range entries {
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		b.WriteString("[")
		b.WriteString(e.SenderID)
		b.WriteString("]: ")
		b.WriteString(e.Content)
	}
	return b.String()
}

package testutil

import (
	"fmt"
	"time"

	"github.com/hupe1980/ensemble/core"
)

// TranscriptBuilder provides a fluent helper for constructing transcripts in tests.
// Example:
//
//	tr := NewTranscriptBuilder().Stage("Visual Analysis", "look").Reply("Visual Analyst", "red").Build()
//
// Entry timestamps advance by one second from a fixed epoch so builds are deterministic.
type TranscriptBuilder struct {
	entries []core.Entry
	at      time.Time
}

// NewTranscriptBuilder creates an empty builder.
func NewTranscriptBuilder() *TranscriptBuilder {
	return &TranscriptBuilder{at: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Stage appends a stage marker formatted like the stage runner does (chainable).
func (b *TranscriptBuilder) Stage(name, instructions string) *TranscriptBuilder {
	return b.System(fmt.Sprintf("--- %s Stage ---\n%s", name, instructions))
}

// System appends a system entry with arbitrary content (chainable).
func (b *TranscriptBuilder) System(content string) *TranscriptBuilder {
	return b.Reply(core.SystemSender, content)
}

// Reply appends an entry from sender (chainable).
func (b *TranscriptBuilder) Reply(sender, content string) *TranscriptBuilder {
	b.entries = append(b.entries, core.NewEntryAt(sender, content, b.at))
	b.at = b.at.Add(time.Second)
	return b
}

// Build returns a transcript holding the accumulated entries. It panics on
// invalid entries, which only happens with an empty sender.
func (b *TranscriptBuilder) Build() *core.Transcript {
	t := core.NewTranscript()
	for _, e := range b.entries {
		if err := t.Append(e); err != nil {
			panic(err)
		}
	}
	return t
}

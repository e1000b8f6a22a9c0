package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SystemSender is the sender id used for stage markers and other
// orchestration-authored entries.
const SystemSender = "system"

// Entry is a single transcript unit. It is immutable once appended to a
// Transcript.
type Entry struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an entry authored by senderID stamped with the current UTC time.
func NewEntry(senderID, content string) Entry {
	return NewEntryAt(senderID, content, time.Now().UTC())
}

// NewEntryAt creates an entry with an explicit timestamp. Useful when the
// caller owns the clock (tests, replay).
func NewEntryAt(senderID, content string, at time.Time) Entry {
	return Entry{
		ID:        NewID(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: at,
	}
}

// NewID generates a new unique identifier for entries and runs.
func NewID() string { return uuid.NewString() }

// IsMarker reports whether the entry was authored by the orchestration itself.
func (e Entry) IsMarker() bool { return e.SenderID == SystemSender }

// Predicate selects transcript entries.
type Predicate func(Entry) bool

// FromSender matches entries authored by id.
func FromSender(id string) Predicate {
	return func(e Entry) bool { return e.SenderID == id }
}

// NotFrom matches entries authored by none of the given ids.
func NotFrom(ids ...string) Predicate {
	return func(e Entry) bool {
		for _, id := range ids {
			if e.SenderID == id {
				return false
			}
		}
		return true
	}
}

// Descriptive matches participant replies that are neither markers nor
// authored by the coordinator.
func Descriptive(coordinatorID string) Predicate {
	return NotFrom(SystemSender, coordinatorID)
}

// StageMarker matches system entries that announce a stage.
func StageMarker() Predicate {
	return func(e Entry) bool { return e.IsMarker() && strings.Contains(e.Content, "Stage") }
}

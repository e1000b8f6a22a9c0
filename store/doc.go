// Package store persists run records and renders them as text reports.
//
// A Record captures everything a finished run produced: the result entries
// handed to renderers, the full transcript and timing. InMemoryStore keeps
// records in a process local map; the badger sub-package stores them on disk.
package store

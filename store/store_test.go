package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/ensemble/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

var epoch = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func record(id, category string, offset time.Duration) Record {
	return Record{
		ID:        id,
		Category:  category,
		Mode:      "advanced",
		Reason:    "Consensus achieved",
		Results:   []core.ResultEntry{{Label: "Poetic Designer", DisplayTag: "magenta", Content: "Soft as dawn."}},
		StartedAt: epoch.Add(offset),
		Duration:  1500 * time.Millisecond,
	}
}

func TestInMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	r := record("a", "TShirt", 0)
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, r, got)

	got.Results[0].Content = "mutated"
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Soft as dawn.", again.Results[0].Content)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Save(ctx, Record{}))
}

func TestInMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Save(ctx, record("old", "TShirt", 0)))
	require.NoError(t, s.Save(ctx, record("new", "TShirt", time.Minute)))
	require.NoError(t, s.Save(ctx, record("jeans", "Jeans", 2*time.Minute)))

	got, err := s.List(ctx, "TShirt", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)

	got, err = s.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "jeans", got[0].ID)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, record("a", "TShirt", 0)))

	want := "========== CLOTHING ANALYSIS RESULTS ==========\n" +
		"Category: TShirt\n" +
		"Process Type: AdvancedProcessFramework\n" +
		"Date: 2025-03-14 09:30:00\n" +
		"Execution Time: 1.50 seconds\n" +
		"Termination: Consensus achieved\n" +
		"==========================================\n" +
		"\n" +
		"[Poetic Designer]\n" +
		"Soft as dawn.\n" +
		"------------------------------------------\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	r := record("a", "Jeans", 0)
	r.Mode = "groupchat"

	path, err := SaveReport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Jeans_GroupChat_20250314_093000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Process Type: GroupChat")
}

func TestProcessType(t *testing.T) {
	assert.Equal(t, "ProcessFramework", ProcessType("process"))
	assert.Equal(t, "custom", ProcessType("custom"))
}

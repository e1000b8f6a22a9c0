package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_ResolutionOrder(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("exact", "exact reply")
	m.RespondContaining("Stage", "stage reply")
	m.Enqueue("first", "second")

	ctx := context.Background()

	got, err := GenerateText(ctx, m, "exact")
	require.NoError(t, err)
	assert.Equal(t, "exact reply", got)

	got, err = GenerateText(ctx, m, "Refinement Stage please")
	require.NoError(t, err)
	assert.Equal(t, "stage reply", got)

	got, err = GenerateText(ctx, m, "anything")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = GenerateText(ctx, m, "anything")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	got, err = GenerateText(ctx, m, "anything")
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: anything", got)

	assert.Equal(t, 5, m.Calls())
	assert.Equal(t, "exact", m.Prompts()[0])
}

func TestGenerateText_Trims(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("p", "  padded reply \n")

	got, err := GenerateText(context.Background(), m, "p")
	require.NoError(t, err)
	assert.Equal(t, "padded reply", got)
}

func TestMockModel_Errors(t *testing.T) {
	m := NewMockModel("mock", "test")

	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	boom := errors.New("boom")
	m.FailNext(boom)
	_, err = m.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = m.Generate(context.Background(), Request{Prompt: "x"})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Generate(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModel_Concurrent(t *testing.T) {
	m := NewMockModel("mock", "test")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Generate(context.Background(), Request{Prompt: "p"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, m.Calls())
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("name", "provider")
	assert.Equal(t, Info{Name: "name", Provider: "provider"}, m.Info())
}

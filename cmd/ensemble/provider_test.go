package main

import (
	"context"
	"testing"

	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	m, err := newModel(Config{Provider: "mock"}, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, "mock", m.Info().Provider)

	m, err = newModel(Config{Provider: "openai", OpenAIAPIKey: "sk-test", Retries: 2}, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.IsType(t, &model.Retrying{}, m)

	m, err = newModel(Config{Provider: "anthropic", AnthropicAPIKey: "key", ModelName: "claude-test", Retries: 1}, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, "claude-test", m.Info().Name)

	_, err = newModel(Config{Provider: "nope"}, logging.NoOpLogger{})
	assert.Error(t, err)
}

func TestMockModel(t *testing.T) {
	m := mockModel()

	got, err := model.GenerateText(context.Background(), m, "You are a Poetic Designer. Lyrical.\n\nProduct: tee")
	require.NoError(t, err)
	assert.Equal(t, "Simulated reply (You are a Poetic Designer. Lyrical.)", got)

	got, err = model.GenerateText(context.Background(), m, "Analyze these descriptions and see if they have reached a consensus")
	require.NoError(t, err)
	assert.Equal(t, "NO, the tone still differs.", got)
}

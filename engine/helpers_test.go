package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/ensemble/evaluation"
	"github.com/hupe1980/ensemble/model"
	"github.com/stretchr/testify/mock"
)

// Prompt markers used to script the mock model.
const (
	analystPrompt     = "You are a Visual Analyst."
	coordinatorPrompt = "You are a Process Coordinator."
	qualityPrompt     = "quality assurance specialist"
	selectorPrompt    = "Based on this feedback"
	finalPrompt       = "selecting the best clothing description"
)

// scriptedModel answers every prompt the advanced pipeline sends.
func scriptedModel(quality, selection string) *model.MockModel {
	m := model.NewMockModel("mock", "test")
	m.RespondContaining(analystPrompt, "A red crew neck T-shirt with a small chest logo.")
	m.RespondContaining(coordinatorPrompt, "The poetic draft needs more product facts.")
	m.RespondContaining(qualityPrompt, quality)
	m.RespondContaining(selectorPrompt, selection)
	m.RespondContaining(finalPrompt, "Final: a bold red tee made for everyday wear.")
	m.RespondContaining("You are a Minimalist Stylist.", "Red tee. Clean lines.")
	m.RespondContaining("You are a Poetic Designer.", "An ember stitched in cotton.")
	m.RespondContaining("You are a Marketing Copywriter.", "Stand out in red - order today!")
	return m
}

// consensusEvaluator accepts consensus on the first check and defers
// everything else to the model-backed evaluator.
type consensusEvaluator struct {
	*evaluation.ModelEvaluator
}

func (consensusEvaluator) EvaluateConsensus(context.Context, evaluation.Input) (bool, error) {
	return true, nil
}

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) EvaluateQuality(ctx context.Context, in evaluation.Input) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

func (m *mockEvaluator) EvaluateConsensus(ctx context.Context, in evaluation.Input) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

func (m *mockEvaluator) SelectRefiners(ctx context.Context, in evaluation.Input) ([]string, error) {
	args := m.Called(ctx, in)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockEvaluator) SelectFinal(ctx context.Context, in evaluation.Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// fakeClock advances by step every time a model call completes.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type tickingModel struct {
	model.Model
	clock *fakeClock
	step  time.Duration
}

func (m *tickingModel) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	defer m.clock.Advance(m.step)
	return m.Model.Generate(ctx, req)
}

// failingModel fails every call whose prompt contains substr.
type failingModel struct {
	model.Model
	substr string
	err    error
}

func (m *failingModel) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	if strings.Contains(req.Prompt, m.substr) {
		return model.Response{}, m.err
	}
	return m.Model.Generate(ctx, req)
}

// blockingModel blocks calls whose prompt contains substr until ctx is done.
type blockingModel struct {
	model.Model
	substr string
}

func (m *blockingModel) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	if strings.Contains(req.Prompt, m.substr) {
		<-ctx.Done()
		return model.Response{}, ctx.Err()
	}
	return m.Model.Generate(ctx, req)
}

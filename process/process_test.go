package process

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/internal/testutil"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
	"github.com/hupe1980/ensemble/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brief = core.Brief{Category: "Sweater", Description: "Wool sweater", Context: "Image: knit.png"}

func scripted() *model.MockModel {
	m := model.NewMockModel("mock", "test")
	m.RespondContaining("You are a Visual Analyst.", "Chunky cable knit.")
	m.RespondContaining("You are a Minimalist Stylist.", "Warm. Simple.")
	m.RespondContaining("You are a Poetic Designer.", "A hearth you can wear.")
	m.RespondContaining("You are a Marketing Copywriter.", "Stay cozy all winter!")
	return m
}

func TestRun(t *testing.T) {
	m := scripted()
	rec := &testutil.Recorder{}

	p, err := New(m, func(o *Options) { o.Observer = rec })
	require.NoError(t, err)

	res, err := p.Run(context.Background(), brief)
	require.NoError(t, err)

	require.Len(t, res.Results, 4)
	assert.Equal(t, participant.VisualAnalyst, res.Results[0].Label)
	assert.Equal(t, participant.MinimalistStylist, res.Results[1].Label)
	assert.Equal(t, "Warm. Simple.", res.Results[1].Content)
	assert.Equal(t, participant.PoeticDesigner, res.Results[2].Label)
	assert.Equal(t, participant.MarketingCopywriter, res.Results[3].Label)
	assert.Equal(t, "yellow", res.Results[3].DisplayTag)

	assert.Equal(t, []string{StageVisualAnalysis, StageCreativeDescriptions}, rec.Stages())
	assert.Len(t, res.Transcript, 6)

	for _, prompt := range m.Prompts() {
		assert.NotContains(t, prompt, "Previous responses")
	}
}

// gate blocks creative calls until all of them are in flight.
type gate struct {
	model.Model
	inflight atomic.Int32
	want     int32
	release  chan struct{}
}

func (g *gate) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	if !strings.Contains(req.Prompt, "Visual Analyst.") {
		if g.inflight.Add(1) == g.want {
			close(g.release)
		}
		select {
		case <-g.release:
		case <-ctx.Done():
			return model.Response{}, ctx.Err()
		case <-time.After(2 * time.Second):
			return model.Response{}, errors.New("creatives did not run concurrently")
		}
	}
	return g.Model.Generate(ctx, req)
}

func TestRun_CreativesRunConcurrently(t *testing.T) {
	g := &gate{Model: scripted(), want: 3, release: make(chan struct{})}

	p, err := New(g)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), brief)
	require.NoError(t, err)
	assert.Len(t, res.Results, 4)
}

func TestRun_FailureCancelsSiblings(t *testing.T) {
	m := scripted()
	boom := errors.New("boom")

	failing := &failOn{Model: m, substr: "You are a Poetic Designer.", err: boom}
	p, err := New(failing, func(o *Options) { o.Concurrency = 1 })
	require.NoError(t, err)

	_, err = p.Run(context.Background(), brief)

	var stageErr *stage.Error
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, participant.PoeticDesigner, stageErr.ParticipantID)
	assert.ErrorIs(t, err, boom)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(scripted(), func(o *Options) { o.Concurrency = -1 })
	assert.Error(t, err)

	_, err = New(scripted(), func(o *Options) { o.Lineup.AnalystID = "nobody" })
	assert.ErrorIs(t, err, participant.ErrUnknownParticipant)

	assert.NotPanics(t, func() {
		_, err = New(scripted(), func(o *Options) { o.Registry = nil })
	})
	assert.ErrorIs(t, err, participant.ErrNilRegistry)
}

type failOn struct {
	model.Model
	substr string
	err    error
}

func (f *failOn) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	if strings.Contains(req.Prompt, f.substr) {
		return model.Response{}, f.err
	}
	return f.Model.Generate(ctx, req)
}

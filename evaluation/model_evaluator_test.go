package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/internal/testutil"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInput(tr *core.Transcript) Input {
	return Input{
		Brief:       core.Brief{Category: "TShirt", Description: "A plain tee"},
		Transcript:  tr,
		Lineup:      participant.DefaultLineup(),
		MaxRefiners: 2,
	}
}

func newEvaluator(t *testing.T) (*ModelEvaluator, *model.MockModel) {
	t.Helper()
	m := model.NewMockModel("mock", "test")
	e, err := NewModelEvaluator(m)
	require.NoError(t, err)
	return e, m
}

func draftsTranscript() *testutil.TranscriptBuilder {
	return testutil.NewTranscriptBuilder().
		Stage("Visual Analysis", "look").
		Reply(participant.VisualAnalyst, "Red crew neck tee").
		Stage("Initial Creative Descriptions", "write").
		Reply(participant.MinimalistStylist, "Red tee.").
		Reply(participant.PoeticDesigner, "Ember on cotton.").
		Reply(participant.MarketingCopywriter, "Buy the red tee!")
}

func TestEvaluateQuality(t *testing.T) {
	ctx := context.Background()

	t.Run("not enough drafts skips model", func(t *testing.T) {
		e, m := newEvaluator(t)
		tr := testutil.NewTranscriptBuilder().Reply(participant.VisualAnalyst, "only one").Build()

		ok, err := e.EvaluateQuality(ctx, newInput(tr))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, m.Calls())
	})

	t.Run("verdict", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("quality assurance specialist", "Accuracy 9 ... Overall: yes")

		ok, err := e.EvaluateQuality(ctx, newInput(draftsTranscript().Reply(participant.ProcessCoordinator, "feedback").Build()))
		require.NoError(t, err)
		assert.True(t, ok)

		prompt := m.Prompts()[0]
		assert.Contains(t, prompt, "[Visual Analyst]: Red crew neck tee\n\n[Minimalist Stylist]: Red tee.")
		assert.NotContains(t, prompt, "[Process Coordinator]")
		assert.NotContains(t, prompt, "--- Visual Analysis Stage ---")
	})

	t.Run("model error", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.FailNext(errors.New("down"))

		_, err := e.EvaluateQuality(ctx, newInput(draftsTranscript().Build()))
		assert.ErrorContains(t, err, "quality evaluation")
	})
}

func TestEvaluateConsensus(t *testing.T) {
	ctx := context.Background()

	t.Run("latest stage drafts", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("reached a consensus", "YES, they align")

		ok, err := e.EvaluateConsensus(ctx, newInput(draftsTranscript().Build()))
		require.NoError(t, err)
		assert.True(t, ok)

		prompt := m.Prompts()[0]
		assert.Contains(t, prompt, "[Poetic Designer]: Ember on cotton.")
		assert.NotContains(t, prompt, "Red crew neck tee")
	})

	t.Run("non-prefix yes is no", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("reached a consensus", "We believe YES is right")

		ok, err := e.EvaluateConsensus(ctx, newInput(draftsTranscript().Build()))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("after coordinator review", func(t *testing.T) {
		e, m := newEvaluator(t)
		tr := draftsTranscript().
			Stage("Coordinator Review", "review").
			Reply(participant.ProcessCoordinator, "feedback").
			Build()

		ok, err := e.EvaluateConsensus(ctx, newInput(tr))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, m.Calls())
	})

	t.Run("entries without ids", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.AddResponder(func(string) (string, bool) { return "YES", true })

		tr := core.NewTranscript()
		for _, entry := range []core.Entry{
			{SenderID: core.SystemSender, Content: "--- Initial Creative Descriptions Stage ---"},
			{SenderID: participant.MinimalistStylist, Content: "a"},
			{SenderID: participant.PoeticDesigner, Content: "b"},
			{SenderID: core.SystemSender, Content: "--- Coordinator Review Stage ---"},
			{SenderID: participant.ProcessCoordinator, Content: "feedback"},
		} {
			require.NoError(t, tr.Append(entry))
		}
		in := newInput(tr)

		latest, found := LatestStageDescriptions(in)
		assert.True(t, found)
		assert.Empty(t, latest)

		ok, err := e.EvaluateConsensus(ctx, in)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, m.Calls())
	})

	t.Run("no marker", func(t *testing.T) {
		e, m := newEvaluator(t)
		tr := testutil.NewTranscriptBuilder().Reply("a", "x").Reply("b", "y").Build()

		ok, err := e.EvaluateConsensus(ctx, newInput(tr))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, m.Calls())
	})
}

func TestSelectRefiners(t *testing.T) {
	ctx := context.Background()

	t.Run("no coordinator feedback returns all creatives", func(t *testing.T) {
		e, m := newEvaluator(t)

		got, err := e.SelectRefiners(ctx, newInput(draftsTranscript().Build()))
		require.NoError(t, err)
		assert.Equal(t, participant.DefaultLineup().CreativeIDs, got)
		assert.Zero(t, m.Calls())
	})

	t.Run("parses reply", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("Based on this feedback", "Poetic Designer, Unknown Agent")
		tr := draftsTranscript().
			Reply(participant.ProcessCoordinator, "old").
			Reply(participant.ProcessCoordinator, "Poet should add texture").
			Build()

		got, err := e.SelectRefiners(ctx, newInput(tr))
		require.NoError(t, err)
		assert.Equal(t, []string{participant.PoeticDesigner}, got)

		prompt := m.Prompts()[0]
		assert.Contains(t, prompt, "Based on this feedback from the Process Coordinator:\n---\nPoet should add texture\n---")
		assert.Contains(t, prompt, "at most 2 agents")
		assert.Contains(t, prompt, "list:\n- Minimalist Stylist\n- Poetic Designer\n- Marketing Copywriter\n")
	})

	t.Run("cap", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("Based on this feedback", "Marketing Copywriter, Poetic Designer, Minimalist Stylist")
		tr := draftsTranscript().Reply(participant.ProcessCoordinator, "all of you").Build()

		in := newInput(tr)
		in.MaxRefiners = 1
		got, err := e.SelectRefiners(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, []string{participant.MarketingCopywriter}, got)
	})
}

func TestSelectFinal(t *testing.T) {
	ctx := context.Background()

	t.Run("no drafts", func(t *testing.T) {
		e, m := newEvaluator(t)
		tr := testutil.NewTranscriptBuilder().Stage("Visual Analysis", "look").Reply(participant.ProcessCoordinator, "x").Build()

		got, err := e.SelectFinal(ctx, newInput(tr))
		require.NoError(t, err)
		assert.Equal(t, NoDescriptions, got)
		assert.Zero(t, m.Calls())
	})

	t.Run("verbatim reply", func(t *testing.T) {
		e, m := newEvaluator(t)
		m.RespondContaining("selecting the best clothing description", "  The ember tee.  ")

		got, err := e.SelectFinal(ctx, newInput(draftsTranscript().Build()))
		require.NoError(t, err)
		assert.Equal(t, "The ember tee.", got)
		assert.Contains(t, m.Prompts()[0], "Base description: A plain tee")
	})
}

func TestNewModelEvaluator_BadTemplate(t *testing.T) {
	_, err := NewModelEvaluator(model.NewMockModel("m", "p"), func(o *Options) { o.FinalTemplate = "{{" })
	assert.Error(t, err)
}

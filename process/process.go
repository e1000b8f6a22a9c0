// Package process implements the independent-participant pipeline: the
// analyst describes the external context first, then every creative drafts a
// description concurrently without seeing the others. Replies are appended
// to the transcript after the join, in lineup order.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/ensemble/compose"
	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
	"github.com/hupe1980/ensemble/stage"
	"golang.org/x/sync/errgroup"
)

// Stage names.
const (
	StageVisualAnalysis       = "Visual Analysis"
	StageCreativeDescriptions = "Creative Descriptions"
)

// Stage instructions written into each stage marker.
const (
	InstructionsVisualAnalysis       = "Analyze the visual elements of the clothing item and provide a detailed description."
	InstructionsCreativeDescriptions = "Create independent creative descriptions of the clothing item."
)

// Options configures a Pipeline.
type Options struct {
	Registry *participant.Registry
	Lineup   participant.Lineup
	Composer *compose.Composer
	// Concurrency limits parallel creative calls. 0 means one goroutine per creative.
	Concurrency int
	Observer    core.Observer
	Logger      logging.Logger
	Clock       func() time.Time
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID      string
	Results    []core.ResultEntry
	Transcript []core.Entry
	StartedAt  time.Time
	Duration   time.Duration
}

// Pipeline runs the independent-participant mode.
type Pipeline struct {
	model model.Model
	opts  Options
}

// New creates a Pipeline around m.
func New(m model.Model, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{
		Registry: participant.DefaultRegistry(),
		Lineup:   participant.DefaultLineup(),
		Observer: core.NoOpObserver{},
		Logger:   logging.NoOpLogger{},
		Clock:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("process: concurrency must not be negative: %d", opts.Concurrency)
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("process: %w", participant.ErrNilRegistry)
	}
	if err := opts.Lineup.Validate(opts.Registry); err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	if opts.Composer == nil {
		c, err := compose.New()
		if err != nil {
			return nil, err
		}
		opts.Composer = c
	}
	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Pipeline{model: m, opts: opts}, nil
}

// Run executes the pipeline for brief.
func (p *Pipeline) Run(ctx context.Context, brief core.Brief) (*Result, error) {
	runID := core.NewID()
	logger := logging.ForRun(p.opts.Logger, runID)
	start := p.opts.Clock()
	t := core.NewTranscript()

	runner := stage.NewRunner(p.model, p.opts.Registry, p.opts.Composer, brief, func(o *stage.Options) {
		o.RunID = runID
		o.Observer = p.opts.Observer
		o.Logger = logger
		o.Clock = func() time.Time { return p.opts.Clock().UTC() }
	})

	p.emit(runID, core.EventRunStarted, "", brief.Category)
	logger.Info("Starting process run", "category", brief.Category, "creatives", len(p.opts.Lineup.CreativeIDs))

	if err := runner.RunStage(ctx, t, StageVisualAnalysis, InstructionsVisualAnalysis, []string{p.opts.Lineup.AnalystID}); err != nil {
		p.emit(runID, core.EventRunFailed, StageVisualAnalysis, err.Error())
		return nil, err
	}

	replies, err := p.draft(ctx, runner, brief)
	if err != nil {
		p.emit(runID, core.EventRunFailed, StageCreativeDescriptions, err.Error())
		return nil, err
	}

	marker := core.NewEntryAt(core.SystemSender, stage.MarkerContent(StageCreativeDescriptions, InstructionsCreativeDescriptions), p.opts.Clock().UTC())
	if err := t.Append(marker); err != nil {
		return nil, err
	}
	p.emit(runID, core.EventStageStarted, StageCreativeDescriptions, "")

	for i, id := range p.opts.Lineup.CreativeIDs {
		entry := core.NewEntryAt(id, replies[i], p.opts.Clock().UTC())
		if err := t.Append(entry); err != nil {
			return nil, err
		}
		ev := core.NewEvent(runID, core.EventEntryAppended)
		ev.Stage = StageCreativeDescriptions
		ev.Entry = &entry
		p.opts.Observer.OnEvent(ev)
	}

	var results []core.ResultEntry
	for e := range t.EntriesWhere(core.NotFrom(core.SystemSender)) {
		results = append(results, core.ResultEntry{
			Label:      e.SenderID,
			DisplayTag: p.opts.Registry.DisplayTag(e.SenderID),
			Content:    e.Content,
		})
	}

	duration := p.opts.Clock().Sub(start)
	logger.Info("Process run completed", "results", len(results), "duration", duration)

	return &Result{
		RunID:      runID,
		Results:    results,
		Transcript: t.Entries(),
		StartedAt:  start,
		Duration:   duration,
	}, nil
}

// draft queries every creative concurrently. Prompts carry no history, so
// no shared state is touched until the join.
func (p *Pipeline) draft(ctx context.Context, runner *stage.Runner, brief core.Brief) ([]string, error) {
	ids := p.opts.Lineup.CreativeIDs
	replies := make([]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	if p.opts.Concurrency > 0 {
		g.SetLimit(p.opts.Concurrency)
	}

	for i, id := range ids {
		g.Go(func() error {
			cfg, ok := p.opts.Registry.Get(id)
			if !ok {
				return fmt.Errorf("process: %w: %s", participant.ErrUnknownParticipant, id)
			}
			prompt, err := p.opts.Composer.Base(cfg, brief)
			if err != nil {
				return err
			}
			reply, err := runner.Generate(gctx, cfg, prompt)
			if err != nil {
				return &stage.Error{Stage: StageCreativeDescriptions, ParticipantID: id, Err: err}
			}
			replies[i] = reply
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies, nil
}

func (p *Pipeline) emit(runID string, typ core.EventType, stageName, detail string) {
	ev := core.NewEvent(runID, typ)
	ev.Stage = stageName
	ev.Detail = detail
	p.opts.Observer.OnEvent(ev)
}

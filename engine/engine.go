package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/ensemble/compose"
	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/evaluation"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
	"github.com/hupe1980/ensemble/stage"
	"github.com/hupe1980/ensemble/termination"
	"github.com/samber/lo"
)

// Stage names.
const (
	StageVisualAnalysis      = "Visual Analysis"
	StageInitialDescriptions = "Initial Creative Descriptions"
	StageCoordinatorReview   = "Coordinator Review"
	StageRefinement          = "Refinement"
)

// Evaluator step names reported in RunError.Stage and decision events.
const (
	StepQuality        = "Quality Evaluation"
	StepConsensus      = "Consensus Check"
	StepRefinerSelect  = "Refiner Selection"
	StepFinalSelection = "Final Selection"
)

// Stage instructions written into each stage marker.
const (
	InstructionsVisualAnalysis      = "Analyze the visual elements of the clothing item and provide a detailed description."
	InstructionsInitialDescriptions = "Create initial creative descriptions of the clothing item from different perspectives."
	InstructionsCoordinatorReview   = "Review the descriptions so far and provide guidance for refinement."
	InstructionsRefinement          = "Refine your description based on the coordinator's feedback and other descriptions."
)

// FinalDisplayTag is the display tag of the final selection result entry.
const FinalDisplayTag = "white"

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains the run budgets. Defaults to DefaultConfig.
	Config Config

	// Registry is the participant catalog. Defaults to participant.DefaultRegistry.
	Registry *participant.Registry

	// Lineup assigns registry ids to pipeline parts. Defaults to participant.DefaultLineup.
	Lineup participant.Lineup

	// Composer renders participant prompts. Defaults to compose.New with
	// Config.HistoryLimit.
	Composer *compose.Composer

	// Evaluator makes every loop decision. Defaults to a model-backed
	// evaluation.ModelEvaluator sharing the run's model.
	Evaluator evaluation.Evaluator

	// Observer receives run events. Defaults to core.NoOpObserver.
	Observer core.Observer

	// Logger provides structured logging. Defaults to NoOp logger.
	Logger logging.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Result is the outcome of a completed run.
type Result struct {
	RunID string
	// Results lists every descriptive reply in order followed by the final selection.
	Results []core.ResultEntry
	// Final is the selected or synthesized artifact.
	Final string
	// Reason is the termination reason of the refinement loop.
	Reason string
	// Iterations counts refinement iterations that started a coordinator review.
	Iterations int
	Transcript []core.Entry
	StartedAt  time.Time
	Duration   time.Duration
}

// Engine runs the advanced pipeline. It holds no per-run state and is safe
// for concurrent use; every Run owns its transcript and termination state.
type Engine struct {
	model     model.Model
	config    Config
	registry  *participant.Registry
	lineup    participant.Lineup
	composer  *compose.Composer
	evaluator evaluation.Evaluator
	observer  core.Observer
	logger    logging.Logger
	clock     func() time.Time
}

// New creates an Engine around m.
func New(m model.Model, optFns ...func(o *Options)) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}

	opts := Options{
		Config:   DefaultConfig,
		Registry: participant.DefaultRegistry(),
		Lineup:   participant.DefaultLineup(),
		Observer: core.NoOpObserver{},
		Logger:   logging.NoOpLogger{},
		Clock:    time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	if opts.Composer == nil {
		c, err := compose.New(func(o *compose.Options) { o.HistoryLimit = opts.Config.HistoryLimit })
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.Composer = c
	}

	return &Engine{
		model:     m,
		config:    opts.Config,
		registry:  opts.Registry,
		lineup:    opts.Lineup,
		composer:  opts.Composer,
		evaluator: opts.Evaluator,
		observer:  opts.Observer,
		logger:    logging.OrNoOp(opts.Logger),
		clock:     opts.Clock,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Registry returns the participant registry.
func (e *Engine) Registry() *participant.Registry { return e.registry }

// Lineup returns the participant lineup.
func (e *Engine) Lineup() participant.Lineup { return e.lineup }

// Validate checks budgets and the lineup without running anything.
func (e *Engine) Validate() error {
	if err := e.config.Validate(); err != nil {
		return err
	}
	if e.registry == nil {
		return fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}
	if err := e.lineup.Validate(e.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// run holds the state of one Run invocation.
type run struct {
	*Engine
	id        string
	logger    logging.Logger
	start     time.Time
	brief     core.Brief
	model     model.Model
	evaluator evaluation.Evaluator
	runner    *stage.Runner
	t         *core.Transcript
	state     termination.State
}

// Run executes the advanced pipeline for brief.
func (e *Engine) Run(ctx context.Context, brief core.Brief) (*Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	id := core.NewID()
	r := &run{
		Engine: e,
		id:     id,
		logger: logging.ForRun(e.logger, id),
		start:  e.clock(),
		brief:  brief,
		model:  e.model,
		t:      core.NewTranscript(),
	}

	if e.config.MaxModelCalls > 0 {
		r.model = model.WithLimit(e.model, model.NewLimiter(e.config.MaxModelCalls))
	}

	r.evaluator = e.evaluator
	if r.evaluator == nil {
		me, err := evaluation.NewModelEvaluator(r.model, func(o *evaluation.Options) { o.Logger = r.logger })
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		r.evaluator = me
	}

	r.runner = stage.NewRunner(r.model, e.registry, e.composer, brief, func(o *stage.Options) {
		o.RunID = r.id
		o.Observer = e.observer
		o.Logger = r.logger
		o.Clock = func() time.Time { return e.clock().UTC() }
	})

	return r.execute(ctx)
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	r.emit(core.EventRunStarted, func(ev *core.Event) { ev.Detail = r.brief.Category })
	r.logger.Info("Starting advanced run", "category", r.brief.Category, "max_iterations", r.config.MaxIterations)

	if err := r.runner.RunStage(ctx, r.t, StageVisualAnalysis, InstructionsVisualAnalysis, []string{r.lineup.AnalystID}); err != nil {
		return r.fail(StageVisualAnalysis, err)
	}

	if err := r.runner.RunStage(ctx, r.t, StageInitialDescriptions, InstructionsInitialDescriptions, r.lineup.CreativeIDs); err != nil {
		return r.fail(StageInitialDescriptions, err)
	}

	iterations, err := r.refine(ctx)
	if err != nil {
		return nil, err
	}

	reason := r.state.Reason()
	r.emit(core.EventLoopTerminated, func(ev *core.Event) {
		ev.Iteration = iterations
		ev.Detail = reason
	})

	final, err := r.evaluator.SelectFinal(ctx, r.input())
	if err != nil {
		return r.fail(StepFinalSelection, err)
	}

	results := append(r.descriptiveResults(), core.ResultEntry{
		Label:      core.FinalSelectionLabel,
		DisplayTag: FinalDisplayTag,
		Content:    final,
	})

	r.emit(core.EventFinalSelected, func(ev *core.Event) { ev.Detail = final })

	duration := r.clock().Sub(r.start)
	r.logger.Info("Run completed", "iterations", iterations, "reason", reason, "duration", duration)

	return &Result{
		RunID:      r.id,
		Results:    results,
		Final:      final,
		Reason:     reason,
		Iterations: iterations,
		Transcript: r.t.Entries(),
		StartedAt:  r.start,
		Duration:   duration,
	}, nil
}

// refine runs the bounded refinement loop and returns the number of
// iterations that reached the coordinator review.
func (r *run) refine(ctx context.Context) (int, error) {
	iteration := 0
	started := 0

	for !r.state.ShouldStop() {
		iteration++

		if r.clock().Sub(r.start) > r.config.TimeLimit {
			r.state.Set(termination.TimeLimitExceeded)
			break
		}

		if iteration > r.config.MaxIterations {
			r.state.Set(termination.MaxIterationsReached)
			break
		}

		started++
		r.emit(core.EventIterationStarted, func(ev *core.Event) { ev.Iteration = iteration })

		stop, err := r.iterate(ctx, iteration)
		if err != nil {
			return started, err
		}
		if stop {
			break
		}
	}

	return started, nil
}

// iterate runs one loop body. It reports stop=true when a flag was raised.
func (r *run) iterate(ctx context.Context, iteration int) (bool, error) {
	loopCtx, cancel := r.budgetContext(ctx)
	defer cancel()

	// cut converts a failure caused by the time budget into a loop exit.
	cut := func(step string, err error) (bool, error) {
		if r.budgetExpired(ctx, loopCtx, err) {
			r.logger.Warn("Time budget cut a call short", "step", step)
			r.state.Set(termination.TimeLimitExceeded)
			return true, nil
		}
		_, ferr := r.fail(step, err)
		return true, ferr
	}

	if err := r.runner.RunStage(loopCtx, r.t, StageCoordinatorReview, InstructionsCoordinatorReview, []string{r.lineup.CoordinatorID}); err != nil {
		return cut(StageCoordinatorReview, err)
	}

	quality, err := r.evaluator.EvaluateQuality(loopCtx, r.input())
	if err != nil {
		return cut(StepQuality, err)
	}
	r.decision(StepQuality, iteration, quality, nil)
	if quality {
		r.state.Set(termination.QualityReached)
		return true, nil
	}

	consensus, err := r.evaluator.EvaluateConsensus(loopCtx, r.input())
	if err != nil {
		return cut(StepConsensus, err)
	}
	r.decision(StepConsensus, iteration, consensus, nil)
	if consensus {
		r.state.Set(termination.ConsensusReached)
		return true, nil
	}

	refiners, err := r.evaluator.SelectRefiners(loopCtx, r.input())
	if err != nil {
		return cut(StepRefinerSelect, err)
	}
	r.decision(StepRefinerSelect, iteration, len(refiners) > 0, refiners)

	if err := r.runner.RunStage(loopCtx, r.t, StageRefinement, InstructionsRefinement, refiners); err != nil {
		return cut(StageRefinement, err)
	}

	return false, nil
}

func (r *run) budgetContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if !r.config.EnforceDeadline {
		return ctx, func() {}
	}
	remaining := r.config.TimeLimit - r.clock().Sub(r.start)
	return context.WithTimeout(ctx, remaining)
}

// budgetExpired reports whether err was caused by the loop budget rather
// than by the caller's context.
func (r *run) budgetExpired(parent, loopCtx context.Context, err error) bool {
	if !r.config.EnforceDeadline || parent.Err() != nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(loopCtx.Err(), context.DeadlineExceeded)
}

func (r *run) input() evaluation.Input {
	return evaluation.Input{
		Brief:       r.brief,
		Transcript:  r.t,
		Lineup:      r.lineup,
		MaxRefiners: r.config.MaxRefiners,
	}
}

func (r *run) descriptiveResults() []core.ResultEntry {
	descriptive := core.Descriptive(r.lineup.CoordinatorID)
	return lo.FilterMap(r.t.Entries(), func(e core.Entry, _ int) (core.ResultEntry, bool) {
		if !descriptive(e) {
			return core.ResultEntry{}, false
		}
		return core.ResultEntry{
			Label:      e.SenderID,
			DisplayTag: r.registry.DisplayTag(e.SenderID),
			Content:    e.Content,
		}, true
	})
}

func (r *run) decision(step string, iteration int, outcome bool, selected []string) {
	r.emit(core.EventDecision, func(ev *core.Event) {
		ev.Decision = step
		ev.Iteration = iteration
		ev.Outcome = outcome
		ev.Selected = selected
	})
}

func (r *run) fail(step string, err error) (*Result, error) {
	r.emit(core.EventRunFailed, func(ev *core.Event) {
		ev.Stage = step
		ev.Detail = err.Error()
	})
	r.logger.Error("Run aborted", "step", step, "error", err.Error())
	return nil, &RunError{
		RunID:      r.id,
		Stage:      step,
		Err:        err,
		Transcript: r.t.Entries(),
		Results:    r.descriptiveResults(),
	}
}

func (r *run) emit(typ core.EventType, fill func(ev *core.Event)) {
	ev := core.NewEvent(r.id, typ)
	if fill != nil {
		fill(&ev)
	}
	r.observer.OnEvent(ev)
}

// Package ensemble provides a high-level façade over the three orchestration
// modes (advanced, process and group chat) and run persistence. Most
// applications interact with this package by:
//  1. Creating an Ensemble via New() around a model.Model
//  2. Calling Run with a Mode and a core.Brief
//  3. Reading the returned Outcome or listing stored records via Store()
//
// The façade delegates orchestration to engine.Engine, process.Pipeline and
// groupchat.Chat while keeping setup concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// store (see store/badger) and a structured logger.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/engine"
	"github.com/hupe1980/ensemble/groupchat"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
	"github.com/hupe1980/ensemble/process"
	"github.com/hupe1980/ensemble/stage"
	"github.com/hupe1980/ensemble/store"
)

// ErrUnknownMode is returned for a mode name that is not recognized.
var ErrUnknownMode = errors.New("unknown mode")

// Mode selects an orchestration strategy.
type Mode string

const (
	// ModeAdvanced runs the staged pipeline with the refinement loop.
	ModeAdvanced Mode = "advanced"
	// ModeProcess runs the analyst, then every creative concurrently.
	ModeProcess Mode = "process"
	// ModeGroupChat runs a round-based discussion.
	ModeGroupChat Mode = "groupchat"
)

// Modes lists every supported mode.
func Modes() []Mode { return []Mode{ModeAdvanced, ModeProcess, ModeGroupChat} }

// ParseMode maps a case-insensitive name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAdvanced, ModeProcess, ModeGroupChat:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options configures the Ensemble instance.
type Options struct {
	// EngineConfig holds the advanced mode budgets.
	EngineConfig engine.Config

	// Registry and Lineup define the participants. Defaults to the built-in catalog.
	Registry *participant.Registry
	Lineup   participant.Lineup

	// Concurrency bounds the process mode fan-out. 0 means unbounded.
	Concurrency int

	// GroupChatRounds is the number of discussion rounds.
	GroupChatRounds int

	// Store persists run records (defaults to an in-memory store).
	Store store.Store

	// Observer receives run events from every mode.
	Observer core.Observer

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	Clock func() time.Time
}

// Outcome is the mode independent result of a Run.
type Outcome struct {
	Mode       Mode
	RunID      string
	Brief      core.Brief
	Results    []core.ResultEntry
	Final      string
	Reason     string
	Iterations int
	Transcript []core.Entry
	StartedAt  time.Time
	Duration   time.Duration
}

// Record converts the outcome to a persisted run record.
func (o *Outcome) Record() store.Record {
	return store.Record{
		ID:         o.RunID,
		Category:   o.Brief.Category,
		Mode:       string(o.Mode),
		Reason:     o.Reason,
		Results:    o.Results,
		Transcript: o.Transcript,
		StartedAt:  o.StartedAt,
		Duration:   o.Duration,
	}
}

// Ensemble is the high-level façade aggregating the three modes and the store.
type Ensemble struct {
	opts    Options
	engine  *engine.Engine
	process *process.Pipeline
	chat    *groupchat.Chat
}

// New creates a new Ensemble around m. Unset services are initialized with
// in-memory implementations.
func New(m model.Model, optFns ...func(o *Options)) (*Ensemble, error) {
	opts := Options{
		EngineConfig:    engine.DefaultConfig,
		Registry:        participant.DefaultRegistry(),
		Lineup:          participant.DefaultLineup(),
		GroupChatRounds: groupchat.DefaultMaxRounds,
		Store:           store.NewInMemoryStore(),
		Observer:        core.NoOpObserver{},
		Logger:          logging.NoOpLogger{},
		Clock:           time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Store == nil {
		opts.Store = store.NewInMemoryStore()
	}

	eng, err := engine.New(m, func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Registry = opts.Registry
		o.Lineup = opts.Lineup
		o.Observer = opts.Observer
		o.Logger = opts.Logger
		o.Clock = opts.Clock
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := process.New(m, func(o *process.Options) {
		o.Registry = opts.Registry
		o.Lineup = opts.Lineup
		o.Concurrency = opts.Concurrency
		o.Observer = opts.Observer
		o.Logger = opts.Logger
		o.Clock = opts.Clock
	})
	if err != nil {
		return nil, err
	}

	members, err := chatMembers(opts.Registry, opts.Lineup)
	if err != nil {
		return nil, err
	}

	chat, err := groupchat.New(m, func(o *groupchat.Options) {
		o.Members = members
		o.MaxRounds = opts.GroupChatRounds
		o.Observer = opts.Observer
		o.Logger = opts.Logger
		o.Clock = opts.Clock
	})
	if err != nil {
		return nil, err
	}

	return &Ensemble{opts: opts, engine: eng, process: pipeline, chat: chat}, nil
}

// chatMembers returns the creatives followed by the analyst.
func chatMembers(reg *participant.Registry, lineup participant.Lineup) ([]participant.Config, error) {
	if reg == nil {
		return nil, participant.ErrNilRegistry
	}
	ids := append(append([]string{}, lineup.CreativeIDs...), lineup.AnalystID)
	members := make([]participant.Config, 0, len(ids))
	for _, id := range ids {
		c, ok := reg.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", participant.ErrUnknownParticipant, id)
		}
		members = append(members, c)
	}
	return members, nil
}

// Store returns the configured record store.
func (e *Ensemble) Store() store.Store { return e.opts.Store }

// Registry returns the participant registry.
func (e *Ensemble) Registry() *participant.Registry { return e.opts.Registry }

// Run executes brief in the given mode and persists the outcome. When
// persistence fails the outcome is still returned alongside the error.
func (e *Ensemble) Run(ctx context.Context, mode Mode, brief core.Brief) (*Outcome, error) {
	var (
		out *Outcome
		err error
	)

	switch mode {
	case ModeAdvanced:
		out, err = e.runAdvanced(ctx, brief)
	case ModeProcess:
		out, err = e.runProcess(ctx, brief)
	case ModeGroupChat:
		out, err = e.runGroupChat(ctx, brief)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		e.logRun(mode, nil, err)
		return nil, err
	}

	if err := e.opts.Store.Save(ctx, out.Record()); err != nil {
		return out, fmt.Errorf("persist run %s: %w", out.RunID, err)
	}
	e.logRun(mode, out, nil)
	return out, nil
}

// logRun reports how a run ended. Cancellations are logged as warnings.
func (e *Ensemble) logRun(mode Mode, out *Outcome, err error) {
	var (
		iterations int
		reason     string
		duration   time.Duration
		logger     = e.opts.Logger
	)
	if out != nil {
		iterations, reason, duration = out.Iterations, out.Reason, out.Duration
		logger = logging.ForRun(logger, out.RunID)
	}

	l, structured := logger.(*logging.EnsembleLogger)
	switch {
	case stage.IsCanceled(err):
		logger.Warn("Run canceled", "mode", mode, "error", err)
	case structured:
		l.LogRun(string(mode), iterations, reason, duration, err)
	case err != nil:
		logger.Error("Run failed", "mode", mode, "error", err)
	default:
		logger.Info("Run completed", "mode", mode, "iterations", iterations, "reason", reason, "duration", duration)
	}
}

func (e *Ensemble) runAdvanced(ctx context.Context, brief core.Brief) (*Outcome, error) {
	res, err := e.engine.Run(ctx, brief)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Mode:       ModeAdvanced,
		RunID:      res.RunID,
		Brief:      brief,
		Results:    res.Results,
		Final:      res.Final,
		Reason:     res.Reason,
		Iterations: res.Iterations,
		Transcript: res.Transcript,
		StartedAt:  res.StartedAt,
		Duration:   res.Duration,
	}, nil
}

func (e *Ensemble) runProcess(ctx context.Context, brief core.Brief) (*Outcome, error) {
	res, err := e.process.Run(ctx, brief)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Mode:       ModeProcess,
		RunID:      res.RunID,
		Brief:      brief,
		Results:    res.Results,
		Transcript: res.Transcript,
		StartedAt:  res.StartedAt,
		Duration:   res.Duration,
	}, nil
}

func (e *Ensemble) runGroupChat(ctx context.Context, brief core.Brief) (*Outcome, error) {
	res, err := e.chat.Run(ctx, groupchat.Topic(brief))
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Mode:       ModeGroupChat,
		RunID:      res.RunID,
		Brief:      brief,
		Results:    res.Results,
		Iterations: res.Rounds,
		Transcript: res.Transcript,
		StartedAt:  res.StartedAt,
		Duration:   res.Duration,
	}, nil
}

// Package stage runs a single named stage of a run: it appends a marker
// entry announcing the stage and then queries each listed participant in
// order, appending every trimmed reply to the shared transcript.
package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/ensemble/compose"
	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
)

// Error reports which participant failed while a stage was running.
type Error struct {
	Stage         string
	ParticipantID string
	Err           error
}

// Error implements error.
func (e *Error) Error() string {
	if e.ParticipantID == "" {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s: participant %s: %v", e.Stage, e.ParticipantID, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// MarkerContent formats the system entry that opens a stage.
func MarkerContent(name, instructions string) string {
	return fmt.Sprintf("--- %s Stage ---\n%s", name, instructions)
}

// Options configures a Runner.
type Options struct {
	RunID    string
	Observer core.Observer
	Logger   logging.Logger
	// Clock stamps appended entries. Defaults to time.Now in UTC.
	Clock func() time.Time
}

// Runner executes stages against one transcript and brief.
type Runner struct {
	model    model.Model
	registry *participant.Registry
	composer *compose.Composer
	brief    core.Brief
	opts     Options
}

// NewRunner creates a stage runner.
func NewRunner(m model.Model, reg *participant.Registry, composer *compose.Composer, brief core.Brief, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Observer: core.NoOpObserver{},
		Logger:   logging.NoOpLogger{},
		Clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	return &Runner{model: m, registry: reg, composer: composer, brief: brief, opts: opts}
}

// RunStage appends exactly one marker entry followed by one reply per known
// participant id, in the order given. Unknown ids are skipped and reported to
// the observer. The first generation failure stops the stage.
func (r *Runner) RunStage(ctx context.Context, t *core.Transcript, name, instructions string, ids []string) error {
	start := time.Now()
	replies := 0

	marker := core.NewEntryAt(core.SystemSender, MarkerContent(name, instructions), r.opts.Clock())
	if err := t.Append(marker); err != nil {
		return &Error{Stage: name, Err: err}
	}
	r.emit(core.EventStageStarted, name, func(e *core.Event) { e.Entry = &marker })

	for _, id := range ids {
		p, ok := r.registry.Get(id)
		if !ok {
			r.opts.Logger.Warn("Skipping unknown participant", "stage", name, "participant", id)
			r.emit(core.EventParticipantSkipped, name, func(e *core.Event) {
				e.Detail = fmt.Sprintf("unknown participant %q", id)
			})
			continue
		}

		entry, err := r.Respond(ctx, p, t)
		if err != nil {
			serr := &Error{Stage: name, ParticipantID: id, Err: err}
			r.logStage(name, replies, time.Since(start), serr)
			return serr
		}
		replies++
		r.emit(core.EventEntryAppended, name, func(e *core.Event) { e.Entry = &entry })
	}

	r.logStage(name, replies, time.Since(start), nil)
	return nil
}

func (r *Runner) logStage(name string, replies int, dur time.Duration, err error) {
	if IsCanceled(err) {
		r.opts.Logger.Warn("Stage canceled", "stage", name, "replies", replies, "duration", dur, "error", err.Error())
		return
	}
	if l, ok := r.opts.Logger.(*logging.EnsembleLogger); ok {
		l.LogStage(name, replies, dur, err)
		return
	}
	if err != nil {
		r.opts.Logger.Error("Stage failed", "stage", name, "replies", replies, "duration", dur, "error", err.Error())
		return
	}
	r.opts.Logger.Info("Stage completed", "stage", name, "replies", replies, "duration", dur)
}

// Respond composes the prompt for p, queries the model and appends the trimmed reply.
func (r *Runner) Respond(ctx context.Context, p participant.Config, t *core.Transcript) (core.Entry, error) {
	prompt, err := r.composer.Compose(p, r.brief, t)
	if err != nil {
		return core.Entry{}, err
	}
	reply, err := r.Generate(ctx, p, prompt)
	if err != nil {
		return core.Entry{}, err
	}
	entry := core.NewEntryAt(p.ID, reply, r.opts.Clock())
	if err := t.Append(entry); err != nil {
		return core.Entry{}, err
	}
	return entry, nil
}

// Generate sends prompt on behalf of p, using its role prompt as instructions,
// and returns the trimmed reply.
func (r *Runner) Generate(ctx context.Context, p participant.Config, prompt string) (string, error) {
	start := time.Now()
	resp, err := r.model.Generate(ctx, model.Request{Instructions: p.Prompt, Prompt: prompt})
	tokens := 0
	if err == nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if l, ok := r.opts.Logger.(*logging.EnsembleLogger); ok {
		l.WithContext("participant", p.ID).LogLLMCall(r.model.Info().Name, tokens, time.Since(start), err == nil, err)
	} else if err != nil {
		r.opts.Logger.Warn("Model call failed", "participant", p.ID, "duration", time.Since(start), "error", err.Error())
	} else {
		r.opts.Logger.Debug("Model call completed", "participant", p.ID, "tokens", tokens, "duration", time.Since(start))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (r *Runner) emit(typ core.EventType, stageName string, fill func(e *core.Event)) {
	e := core.NewEvent(r.opts.RunID, typ)
	e.Stage = stageName
	if fill != nil {
		fill(&e)
	}
	r.opts.Observer.OnEvent(e)
}

// IsCanceled reports whether err stems from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

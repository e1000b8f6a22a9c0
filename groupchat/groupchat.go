// Package groupchat implements the round-based discussion mode: after a
// topic marker, every member replies in turn with the full conversation in
// view, and between rounds a coordinator summarizes and steers the next one.
package groupchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/internal/util"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/participant"
)

// ErrNoMembers is returned when a chat has nobody to talk.
var ErrNoMembers = errors.New("no members added to the group chat")

// DefaultMaxRounds is the number of rounds when Options.MaxRounds is unset.
const DefaultMaxRounds = 3

// DefaultMemberTemplate is the prompt each member answers.
const DefaultMemberTemplate = `You are {{.Name}}, {{.Description}}. Respond in your unique voice and perspective.

Conversation history:
{{.History}}

Your response:`

// DefaultCoordinatorTemplate is the prompt the coordinator answers between rounds.
const DefaultCoordinatorTemplate = `As the discussion coordinator, summarize the key points made so far and suggest what aspects should be discussed next.

Conversation history:
{{.History}}`

// TopicMarker formats the system entry opening the discussion.
func TopicMarker(topic string) string {
	return "The topic of discussion is: " + topic
}

// Topic builds the discussion topic for a brief.
func Topic(brief core.Brief) string {
	return fmt.Sprintf("Create multiple creative descriptions for this %s: %s.\n\n"+
		"Product category: %s\n"+
		"Base description: %s\n"+
		"Product analysis details: %s\n\n"+
		"Each agent should contribute a unique perspective on the item based on their expertise.",
		brief.Category, brief.Description, brief.Category, brief.Description, brief.Context)
}

// DefaultCoordinator is the editor summarizing between rounds.
func DefaultCoordinator() participant.Config {
	return participant.Config{
		ID:          "Fashion Editor",
		Role:        participant.RoleCoordinator,
		Description: "A senior fashion editor who coordinates the discussion and synthesizes insights",
		DisplayTag:  "white",
	}
}

// DefaultMembers returns the default discussion members in speaking order.
func DefaultMembers() []participant.Config {
	reg := participant.DefaultRegistry()
	var members []participant.Config
	for _, id := range []string{
		participant.MinimalistStylist,
		participant.PoeticDesigner,
		participant.MarketingCopywriter,
		participant.VisualAnalyst,
	} {
		c, _ := reg.Get(id)
		members = append(members, c)
	}
	return members
}

// Options configures a Chat.
type Options struct {
	Members []participant.Config
	// Coordinator summarizes between rounds. When its ID is empty the first
	// member coordinates.
	Coordinator         participant.Config
	MaxRounds           int
	MemberTemplate      string
	CoordinatorTemplate string
	Observer            core.Observer
	Logger              logging.Logger
	Clock               func() time.Time
}

// Result is the outcome of a chat.
type Result struct {
	RunID      string
	Results    []core.ResultEntry
	Transcript []core.Entry
	Rounds     int
	StartedAt  time.Time
	Duration   time.Duration
}

// Chat runs group discussions.
type Chat struct {
	model       model.Model
	opts        Options
	member      *template.Template
	coordinator *template.Template
}

// New creates a Chat around m.
func New(m model.Model, optFns ...func(o *Options)) (*Chat, error) {
	opts := Options{
		Members:             DefaultMembers(),
		Coordinator:         DefaultCoordinator(),
		MaxRounds:           DefaultMaxRounds,
		MemberTemplate:      DefaultMemberTemplate,
		CoordinatorTemplate: DefaultCoordinatorTemplate,
		Observer:            core.NoOpObserver{},
		Logger:              logging.NoOpLogger{},
		Clock:               time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(opts.Members) == 0 {
		return nil, ErrNoMembers
	}
	if opts.MaxRounds <= 0 {
		return nil, fmt.Errorf("groupchat: max rounds must be positive: %d", opts.MaxRounds)
	}
	if opts.Coordinator.ID == "" {
		opts.Coordinator = opts.Members[0]
	}
	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	member, err := util.ParseTemplate("member", opts.MemberTemplate)
	if err != nil {
		return nil, err
	}
	coordinator, err := util.ParseTemplate("coordinator", opts.CoordinatorTemplate)
	if err != nil {
		return nil, err
	}
	return &Chat{model: m, opts: opts, member: member, coordinator: coordinator}, nil
}

type promptData struct {
	Name        string
	Description string
	History     string
}

// Run discusses topic for MaxRounds rounds.
func (c *Chat) Run(ctx context.Context, topic string) (*Result, error) {
	runID := core.NewID()
	logger := logging.ForRun(c.opts.Logger, runID)
	start := c.opts.Clock()
	t := core.NewTranscript()

	if err := c.append(runID, t, core.SystemSender, TopicMarker(topic)); err != nil {
		return nil, err
	}
	logger.Info("Starting group chat", "members", len(c.opts.Members), "rounds", c.opts.MaxRounds)

	for round := 1; round <= c.opts.MaxRounds; round++ {
		ev := core.NewEvent(runID, core.EventIterationStarted)
		ev.Iteration = round
		c.opts.Observer.OnEvent(ev)

		for _, member := range c.opts.Members {
			if err := c.speak(ctx, runID, t, c.member, member); err != nil {
				return nil, fmt.Errorf("groupchat: round %d: %s: %w", round, member.ID, err)
			}
		}

		if round < c.opts.MaxRounds {
			if err := c.speak(ctx, runID, t, c.coordinator, c.opts.Coordinator); err != nil {
				return nil, fmt.Errorf("groupchat: round %d: coordinator %s: %w", round, c.opts.Coordinator.ID, err)
			}
		}
	}

	tags := map[string]string{c.opts.Coordinator.ID: c.opts.Coordinator.DisplayTag}
	for _, m := range c.opts.Members {
		tags[m.ID] = m.DisplayTag
	}

	var results []core.ResultEntry
	for e := range t.EntriesWhere(core.NotFrom(core.SystemSender)) {
		tag := tags[e.SenderID]
		if tag == "" {
			tag = participant.FallbackDisplayTag
		}
		results = append(results, core.ResultEntry{Label: e.SenderID, DisplayTag: tag, Content: e.Content})
	}

	duration := c.opts.Clock().Sub(start)
	logger.Info("Group chat completed", "entries", t.Len(), "duration", duration)

	return &Result{
		RunID:      runID,
		Results:    results,
		Transcript: t.Entries(),
		Rounds:     c.opts.MaxRounds,
		StartedAt:  start,
		Duration:   duration,
	}, nil
}

func (c *Chat) speak(ctx context.Context, runID string, t *core.Transcript, tmpl *template.Template, p participant.Config) error {
	prompt, err := util.Execute(tmpl, promptData{
		Name:        p.ID,
		Description: p.Description,
		History:     history(t),
	})
	if err != nil {
		return err
	}
	resp, err := c.model.Generate(ctx, model.Request{Instructions: p.Prompt, Prompt: prompt})
	if err != nil {
		return err
	}
	return c.append(runID, t, p.ID, strings.TrimSpace(resp.Text))
}

func (c *Chat) append(runID string, t *core.Transcript, sender, content string) error {
	entry := core.NewEntryAt(sender, content, c.opts.Clock().UTC())
	if err := t.Append(entry); err != nil {
		return err
	}
	ev := core.NewEvent(runID, core.EventEntryAppended)
	ev.Entry = &entry
	c.opts.Observer.OnEvent(ev)
	return nil
}

// history renders every entry, markers included, one per line.
func history(t *core.Transcript) string {
	var lines []string
	for e := range t.EntriesWhere(nil) {
		lines = append(lines, fmt.Sprintf("[%s]: %s", e.SenderID, e.Content))
	}
	return strings.Join(lines, "\n")
}

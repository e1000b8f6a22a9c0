// Package compose builds the prompt each participant receives: a role
// template rendered with the run's brief, followed by the replies other
// participants have produced so far.
package compose

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/internal/util"
	"github.com/hupe1980/ensemble/participant"
)

// HistoryHeader introduces the history section of a composed prompt.
const HistoryHeader = "\n\nPrevious responses:\n"

// DefaultAnalystTemplate asks the analyst to describe the external context.
const DefaultAnalystTemplate = `You are a {{.Name}}. {{.Description}}

Product category: {{.Category}}
Image analysis data:
{{.Context}}

Provide a detailed description of what you can see in this image, including the design, color, style,
and key features of the {{.Category}}. Focus exclusively on the visual elements as if you were analyzing
the actual image.
`

// DefaultCoordinatorTemplate asks the coordinator for structured review feedback.
const DefaultCoordinatorTemplate = `You are a {{.Name}}. {{.Description}}

Product category: {{.Category}}
Base description: {{.BaseDescription}}

Review the descriptions provided by the different agents and provide specific feedback on:
1. Which description(s) capture the essence of the item best
2. What elements could be improved or combined
3. Specific suggestions for the refinement stage
4. Which agents should refine their descriptions in the next round

Be concise but specific in your feedback.
`

// DefaultCreativeTemplate is the generic creative brief.
const DefaultCreativeTemplate = `You are a {{.Name}}. {{.Description}}

Product: {{.BaseDescription}}
Category: {{.Category}}
Product analysis details:
{{.Context}}

Create a unique, engaging description that captures the essence of this clothing item.
Focus on its style, appeal, and how it makes the wearer feel. Use your unique perspective
and voice as a {{.Name}}.
`

// TemplateData is the value role templates are executed with.
type TemplateData struct {
	Name            string
	Description     string
	Category        string
	BaseDescription string
	Context         string
}

// Options configures a Composer.
type Options struct {
	AnalystTemplate     string
	CoordinatorTemplate string
	CreativeTemplate    string
	// HistoryLimit keeps only the most recent N history entries. 0 keeps all.
	HistoryLimit int
}

// Composer renders participant prompts. It is stateless apart from its
// compiled templates and safe for concurrent use.
type Composer struct {
	templates    map[participant.Role]*template.Template
	historyLimit int
}

// New compiles the role templates.
func New(optFns ...func(o *Options)) (*Composer, error) {
	opts := Options{
		AnalystTemplate:     DefaultAnalystTemplate,
		CoordinatorTemplate: DefaultCoordinatorTemplate,
		CreativeTemplate:    DefaultCreativeTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryLimit < 0 {
		return nil, fmt.Errorf("compose: history limit must not be negative: %d", opts.HistoryLimit)
	}

	c := &Composer{
		templates:    make(map[participant.Role]*template.Template, 3),
		historyLimit: opts.HistoryLimit,
	}
	for role, text := range map[participant.Role]string{
		participant.RoleAnalyst:     opts.AnalystTemplate,
		participant.RoleCoordinator: opts.CoordinatorTemplate,
		participant.RoleCreative:    opts.CreativeTemplate,
	} {
		tmpl, err := util.ParseTemplate(role.String(), text)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		c.templates[role] = tmpl
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(optFns ...func(o *Options)) *Composer {
	c, err := New(optFns...)
	if err != nil {
		panic(err)
	}
	return c
}

// Compose returns the role prompt for p followed by the history section.
// The history lists replies from everyone except the system and p itself in
// insertion order and is omitted while the transcript holds at most one entry.
func (c *Composer) Compose(p participant.Config, brief core.Brief, t *core.Transcript) (string, error) {
	base, err := c.Base(p, brief)
	if err != nil {
		return "", err
	}
	return base + c.History(p.ID, t), nil
}

// Base renders only the role template for p.
func (c *Composer) Base(p participant.Config, brief core.Brief) (string, error) {
	tmpl, ok := c.templates[p.Role]
	if !ok {
		return "", fmt.Errorf("compose: %s: %w", p.ID, participant.ErrUnknownRole)
	}
	return util.Execute(tmpl, TemplateData{
		Name:            p.ID,
		Description:     p.Description,
		Category:        brief.Category,
		BaseDescription: brief.Description,
		Context:         brief.Context,
	})
}

// History renders the history section as seen by participant id.
func (c *Composer) History(id string, t *core.Transcript) string {
	if t == nil || t.Len() <= 1 {
		return ""
	}
	entries := slices.Collect(t.EntriesWhere(core.NotFrom(core.SystemSender, id)))
	if c.historyLimit > 0 && len(entries) > c.historyLimit {
		entries = entries[len(entries)-c.historyLimit:]
	}
	var b strings.Builder
	b.WriteString(HistoryHeader)
	b.WriteString(core.Render(slices.Values(entries)))
	return b.String()
}

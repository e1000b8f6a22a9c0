// Package render prints run output to a terminal. Display tags attached to
// participants map to gookit/color styles; summaries are tablewriter tables.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/store"
)

var styles = map[string]color.Style{
	"cyan":     color.New(color.FgCyan),
	"magenta":  color.New(color.FgMagenta),
	"yellow":   color.New(color.FgYellow),
	"green":    color.New(color.FgGreen),
	"white":    color.New(color.FgWhite),
	"red":      color.New(color.FgRed),
	"blue":     color.New(color.FgBlue),
	"gray":     color.New(color.FgGray),
	"darkgray": color.New(color.FgGray),
}

// Style returns the style for a display tag. Unknown tags render unstyled.
func Style(tag string) color.Style {
	return styles[strings.ToLower(strings.TrimSpace(tag))]
}

// Options configures a Printer.
type Options struct {
	// Colors enables ANSI styling. gookit/color still strips codes when the
	// terminal does not support them.
	Colors bool
}

// Printer writes results, progress and summaries.
type Printer struct {
	w      io.Writer
	colors bool
}

// New creates a Printer writing to w (os.Stdout when nil).
func New(w io.Writer, optFns ...func(o *Options)) *Printer {
	opts := Options{Colors: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w, colors: opts.Colors}
}

func (p *Printer) paint(tag, s string) string {
	if !p.colors {
		return s
	}
	return Style(tag).Render(s)
}

// Entry prints one labelled block: the label in white, the content in the
// tag's color, then a blank line.
func (p *Printer) Entry(label, tag, content string) {
	fmt.Fprintln(p.w, p.paint("white", "["+label+"]:"))
	fmt.Fprintln(p.w, p.paint(tag, content))
	fmt.Fprintln(p.w)
}

// Results prints every result entry in order.
func (p *Printer) Results(results []core.ResultEntry) {
	for _, r := range results {
		p.Entry(r.Label, r.DisplayTag, r.Content)
	}
}

// Timing prints an execution time line.
func (p *Printer) Timing(label string, d time.Duration) {
	fmt.Fprintln(p.w, p.paint("yellow", fmt.Sprintf("%s execution time: %.2f seconds", label, d.Seconds())))
}

// Info prints a status line in green.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, p.paint("green", fmt.Sprintf(format, args...)))
}

// Error prints a status line in red.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.paint("red", fmt.Sprintf(format, args...)))
}

// Observer returns a core.Observer that prints replies as they are appended
// and stage markers in dark gray. tags resolves a sender's display tag.
func (p *Printer) Observer(tags func(senderID string) string) core.Observer {
	return core.ObserverFunc(func(e core.Event) {
		switch e.Type {
		case core.EventStageStarted:
			fmt.Fprintln(p.w, p.paint("darkgray", fmt.Sprintf("[System] %s stage", e.Stage)))
		case core.EventParticipantSkipped:
			fmt.Fprintln(p.w, p.paint("darkgray", fmt.Sprintf("[System] skipped: %s", e.Detail)))
		case core.EventEntryAppended:
			if e.Entry == nil || e.Entry.IsMarker() {
				return
			}
			tag := ""
			if tags != nil {
				tag = tags(e.Entry.SenderID)
			}
			p.Entry(e.Entry.SenderID, tag, e.Entry.Content)
		}
	})
}

// SummaryRow is one line of the run summary table.
type SummaryRow struct {
	Mode       string
	Category   string
	Reason     string
	Iterations int
	Results    int
	Duration   time.Duration
}

// Summary prints a one-row table describing a finished run.
func (p *Printer) Summary(row SummaryRow) {
	table := p.table([]string{"Mode", "Category", "Termination", "Iterations", "Results", "Duration"})
	table.Append([]string{
		store.ProcessType(row.Mode),
		row.Category,
		orDash(row.Reason),
		fmt.Sprint(row.Iterations),
		fmt.Sprint(row.Results),
		fmt.Sprintf("%.2fs", row.Duration.Seconds()),
	})
	table.Render()
}

// Records prints a table of stored run records.
func (p *Printer) Records(records []store.Record) {
	table := p.table([]string{"ID", "Started", "Category", "Mode", "Termination", "Results", "Duration"})
	for _, r := range records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append([]string{
			id,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Category,
			store.ProcessType(r.Mode),
			orDash(r.Reason),
			fmt.Sprint(len(r.Results)),
			fmt.Sprintf("%.2fs", r.Duration.Seconds()),
		})
	}
	table.Render()
}

func (p *Printer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

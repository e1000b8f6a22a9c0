package evaluation

import (
	"context"
	"strings"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/participant"
	"github.com/samber/lo"
)

// NoDescriptions is the final selection returned when no participant produced a draft.
const NoDescriptions = "No descriptions were generated."

// Input is the read-only view evaluators work from.
type Input struct {
	Brief      core.Brief
	Transcript *core.Transcript
	Lineup     participant.Lineup
	// MaxRefiners caps the selector. 0 disables the cap.
	MaxRefiners int
}

// QualityEvaluator decides whether the drafts so far meet the quality bar.
type QualityEvaluator interface {
	EvaluateQuality(ctx context.Context, in Input) (bool, error)
}

// ConsensusEvaluator decides whether the latest stage's drafts have converged.
type ConsensusEvaluator interface {
	EvaluateConsensus(ctx context.Context, in Input) (bool, error)
}

// RefinerSelector picks the creatives taking part in the next refinement stage.
type RefinerSelector interface {
	SelectRefiners(ctx context.Context, in Input) ([]string, error)
}

// FinalSelector produces the final artifact.
type FinalSelector interface {
	SelectFinal(ctx context.Context, in Input) (string, error)
}

// Evaluator bundles every decision the advanced pipeline needs.
type Evaluator interface {
	QualityEvaluator
	ConsensusEvaluator
	RefinerSelector
	FinalSelector
}

// IsQualityReached reports whether a quality verdict contains "YES" anywhere,
// case-insensitively.
func IsQualityReached(reply string) bool {
	return strings.Contains(strings.ToUpper(reply), "YES")
}

// IsConsensusReached reports whether a consensus verdict starts with "YES",
// case-insensitively. Surrounding whitespace is ignored.
func IsConsensusReached(reply string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(reply)), "YES")
}

// ParseSelection splits a comma separated reply into participant ids. Names
// are trimmed, unknown names and duplicates are dropped and reply order is
// kept. An empty result yields fallback alone. max > 0 truncates the result.
func ParseSelection(reply string, allowed []string, fallback string, max int) []string {
	names := lo.Map(strings.Split(reply, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	selected := lo.Uniq(lo.Filter(names, func(name string, _ int) bool {
		return lo.Contains(allowed, name)
	}))
	if len(selected) == 0 {
		return []string{fallback}
	}
	if max > 0 && len(selected) > max {
		selected = selected[:max]
	}
	return selected
}

// Descriptions returns every descriptive entry (neither system nor coordinator).
func Descriptions(in Input) []core.Entry {
	return lo.Filter(in.Transcript.Entries(), func(e core.Entry, _ int) bool {
		return core.Descriptive(in.Lineup.CoordinatorID)(e)
	})
}

// LatestStageDescriptions returns the descriptive entries appended after the
// most recent stage marker. ok is false when no stage marker exists.
func LatestStageDescriptions(in Input) (entries []core.Entry, ok bool) {
	seq, found := in.Transcript.SinceLast(core.StageMarker(), core.Descriptive(in.Lineup.CoordinatorID))
	if !found {
		return nil, false
	}
	for e := range seq {
		entries = append(entries, e)
	}
	return entries, true
}

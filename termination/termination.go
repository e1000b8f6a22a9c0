// Package termination tracks why the refinement loop of a run stops.
//
// State holds four independent flags. Each flag is set at most once and never
// cleared. The reported reason is resolved by a fixed priority
// (quality, consensus, max iterations, time limit) regardless of the order in
// which flags were raised.
package termination

import (
	"strings"
	"sync"
)

// Condition identifies one termination flag.
type Condition int

const (
	// QualityReached reports the quality evaluator accepted the drafts.
	QualityReached Condition = iota
	// ConsensusReached reports the latest drafts converged.
	ConsensusReached
	// MaxIterationsReached reports the iteration budget was used up.
	MaxIterationsReached
	// TimeLimitExceeded reports the wall-clock budget was used up.
	TimeLimitExceeded
)

// Reason strings reported by State.Reason.
const (
	ReasonQuality       = "Quality threshold reached"
	ReasonConsensus     = "Consensus achieved"
	ReasonMaxIterations = "Maximum iterations reached"
	ReasonTimeLimit     = "Time limit exceeded"
	ReasonUnknown       = "Unknown"
)

// priority lists conditions from most to least significant.
var priority = []struct {
	cond   Condition
	reason string
}{
	{QualityReached, ReasonQuality},
	{ConsensusReached, ReasonConsensus},
	{MaxIterationsReached, ReasonMaxIterations},
	{TimeLimitExceeded, ReasonTimeLimit},
}

// String returns the reason string associated with the condition.
func (c Condition) String() string {
	for _, p := range priority {
		if p.cond == c {
			return p.reason
		}
	}
	return ReasonUnknown
}

// State is the termination state of one run. The zero value has every flag
// cleared and is ready to use.
type State struct {
	mu    sync.RWMutex
	flags [4]bool
}

// Set raises a flag. It reports whether the flag was newly raised.
func (s *State) Set(c Condition) bool {
	if c < QualityReached || c > TimeLimitExceeded {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags[c] {
		return false
	}
	s.flags[c] = true
	return true
}

// Has reports whether a flag is raised.
func (s *State) Has(c Condition) bool {
	if c < QualityReached || c > TimeLimitExceeded {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[c]
}

// ShouldStop reports whether any flag is raised.
func (s *State) ShouldStop() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flags {
		if f {
			return true
		}
	}
	return false
}

// Reason returns the highest priority raised condition's reason, or
// ReasonUnknown when no flag is raised.
func (s *State) Reason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range priority {
		if s.flags[p.cond] {
			return p.reason
		}
	}
	return ReasonUnknown
}

// Raised returns the raised conditions in priority order.
func (s *State) Raised() []Condition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Condition
	for _, p := range priority {
		if s.flags[p.cond] {
			out = append(out, p.cond)
		}
	}
	return out
}

// String renders the raised reasons joined by ", ".
func (s *State) String() string {
	raised := s.Raised()
	if len(raised) == 0 {
		return ReasonUnknown
	}
	parts := make([]string, len(raised))
	for i, c := range raised {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

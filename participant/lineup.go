package participant

import (
	"fmt"
	"slices"
)

// Lineup assigns registry ids to the parts of the advanced pipeline.
type Lineup struct {
	AnalystID     string   `json:"analyst" yaml:"analyst"`
	CoordinatorID string   `json:"coordinator" yaml:"coordinator"`
	CreativeIDs   []string `json:"creatives" yaml:"creatives"`
	// DefaultRefinerID is chosen when refiner selection yields nothing usable.
	DefaultRefinerID string `json:"default_refiner" yaml:"default_refiner"`
}

// Validate checks that every id is registered with the expected role and
// that the default refiner is one of the creatives.
func (l Lineup) Validate(r *Registry) error {
	if r == nil {
		return ErrNilRegistry
	}
	if err := expectRole(r, l.AnalystID, RoleAnalyst); err != nil {
		return fmt.Errorf("analyst: %w", err)
	}
	if err := expectRole(r, l.CoordinatorID, RoleCoordinator); err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	if len(l.CreativeIDs) == 0 {
		return fmt.Errorf("creatives: %w: none configured", ErrUnknownParticipant)
	}
	for _, id := range l.CreativeIDs {
		if err := expectRole(r, id, RoleCreative); err != nil {
			return fmt.Errorf("creatives: %w", err)
		}
	}
	if !slices.Contains(l.CreativeIDs, l.DefaultRefinerID) {
		return fmt.Errorf("default refiner: %w: %q is not a creative", ErrUnknownParticipant, l.DefaultRefinerID)
	}
	return nil
}

func expectRole(r *Registry, id string, role Role) error {
	c, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParticipant, id)
	}
	if c.Role != role {
		return fmt.Errorf("%w: %q has role %s, want %s", ErrInvalidParticipant, id, c.Role, role)
	}
	return nil
}

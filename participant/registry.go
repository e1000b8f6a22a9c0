package participant

import (
	"fmt"
	"sync"
)

// Registry is an ordered, read-mostly catalog of participant configs keyed by id.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	configs map[string]Config
}

// NewRegistry builds a registry from the given configs, preserving order.
func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{configs: make(map[string]Config, len(configs))}
	for _, c := range configs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for static catalogs.
func MustRegistry(configs ...Config) *Registry {
	r, err := NewRegistry(configs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register validates and adds a config. Duplicate ids are rejected.
func (r *Registry) Register(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.configs[c.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateParticipant, c.ID)
	}
	r.configs[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// Get returns the config for id.
func (r *Registry) Get(id string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	return c, ok
}

// IDs returns all registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every config in registration order.
func (r *Registry) All() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Config, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id])
	}
	return out
}

// ByRole returns configs with the given role in registration order.
func (r *Registry) ByRole(role Role) []Config {
	var out []Config
	for _, c := range r.All() {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// FallbackDisplayTag is used for senders without a registered display tag.
const FallbackDisplayTag = "gray"

// DisplayTag returns the display tag registered for id, or FallbackDisplayTag
// when id is unknown or has no tag.
func (r *Registry) DisplayTag(id string) string {
	if c, ok := r.Get(id); ok && c.DisplayTag != "" {
		return c.DisplayTag
	}
	return FallbackDisplayTag
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

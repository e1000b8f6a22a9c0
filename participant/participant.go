package participant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidParticipant is returned for configs failing validation.
	ErrInvalidParticipant = errors.New("invalid participant")
	// ErrDuplicateParticipant is returned when an id is registered twice.
	ErrDuplicateParticipant = errors.New("duplicate participant")
	// ErrUnknownParticipant is returned when a lineup references a missing id.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrUnknownRole is returned when a role name cannot be parsed.
	ErrUnknownRole = errors.New("unknown role")
	// ErrNilRegistry is returned when a lineup is resolved without a registry.
	ErrNilRegistry = errors.New("registry is required")
)

// Role is the closed set of parts a participant can play.
type Role int

const (
	// RoleCreative produces descriptions from its own perspective.
	RoleCreative Role = iota + 1
	// RoleAnalyst extracts facts from the external context.
	RoleAnalyst
	// RoleCoordinator reviews drafts and steers refinement.
	RoleCoordinator
)

var roleNames = map[Role]string{
	RoleCreative:    "creative",
	RoleAnalyst:     "analyst",
	RoleCoordinator: "coordinator",
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == needle {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Config describes a single participant. Values are immutable once registered.
type Config struct {
	// ID doubles as the transcript sender id and the display label.
	ID   string `json:"id" yaml:"id" validate:"required"`
	Role Role   `json:"role" yaml:"role" validate:"required"`
	// Prompt is the role prompt sent as system instructions.
	Prompt      string `json:"prompt" yaml:"prompt"`
	Description string `json:"description" yaml:"description"`
	// DisplayTag is an opaque rendering hint (a color name for the console renderer).
	DisplayTag string `json:"display_tag,omitempty" yaml:"display_tag,omitempty"`
}

var validate = validator.New()

// Validate checks required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidParticipant)
	}
	if c.ID == "system" {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalidParticipant, c.ID)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidParticipant, c.ID, err)
	}
	if _, ok := roleNames[c.Role]; !ok {
		return fmt.Errorf("%w %s: %w", ErrInvalidParticipant, c.ID, ErrUnknownRole)
	}
	return nil
}

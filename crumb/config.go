package crumb

import "fmt"

// Mode selects the collapse policy for same-rank headings.
type Mode int

const (
	// ModeDefault keeps every heading seen at the shallowest rank of
	// each tier, preserving sibling history in the stack.
	ModeDefault Mode = iota
	// ModeConcise keeps only the most recent heading at each tier.
	ModeConcise
)

func (m Mode) String() string {
	switch m {
	case ModeConcise:
		return "concise"
	default:
		return "default"
	}
}

// ParseMode converts a config or query string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "default":
		return ModeDefault, nil
	case "concise":
		return ModeConcise, nil
	}
	return ModeDefault, fmt.Errorf("crumb: unknown mode %q", s)
}

// ScrollBehavior tells the host how to move the view when the user
// activates a stack entry. The engine only carries it; hosts decide
// what smooth means for their surface.
type ScrollBehavior int

const (
	BehaviorAuto ScrollBehavior = iota
	BehaviorSmooth
	BehaviorInstant
)

func (b ScrollBehavior) String() string {
	switch b {
	case BehaviorSmooth:
		return "smooth"
	case BehaviorInstant:
		return "instant"
	default:
		return "auto"
	}
}

// ParseBehavior converts a config or query string into a
// ScrollBehavior.
func ParseBehavior(s string) (ScrollBehavior, error) {
	switch s {
	case "", "auto":
		return BehaviorAuto, nil
	case "smooth":
		return BehaviorSmooth, nil
	case "instant":
		return BehaviorInstant, nil
	}
	return BehaviorAuto, fmt.Errorf("crumb: unknown scroll behavior %q", s)
}

// Config is the per-view resolution configuration. Max caps the stack
// length, 0 meaning unlimited; boundaries that build a Config from
// untrusted input normalize negative values to 0 before calling in.
type Config struct {
	Mode           Mode
	Max            int
	ScrollBehavior ScrollBehavior
}

package formation

import "errors"

// Resolve failures. Each is returned with Unresolved and is retryable next tick.
var (
	ErrNoGroup          = errors.New("formation: caller has no group")
	ErrAnchorUnsafe     = errors.New("formation: follow target missing or unsafe")
	ErrIncompleteLayout = errors.New("formation: anchor or self not in layout")
	ErrInvalidGround    = errors.New("formation: no valid ground at target")
)

// Reason returns a short label for a Resolve error, for logs and counters.
func Reason(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, ErrNoGroup):
		return "no_group"
	case errors.Is(err, ErrAnchorUnsafe):
		return "anchor_unsafe"
	case errors.Is(err, ErrIncompleteLayout):
		return "incomplete_layout"
	case errors.Is(err, ErrInvalidGround):
		return "invalid_ground"
	default:
		return "error"
	}
}

// Reasons lists every label Reason can return for a non-nil sentinel, in a
// stable order.
var Reasons = []string{"no_group", "anchor_unsafe", "incomplete_layout", "invalid_ground"}

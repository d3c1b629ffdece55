package orders

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an order.
//
//	Pending ──> Shipped ──> Delivered
//	   │           │
//	   └───────────┴──> Cancelled
//
// Delivered and Cancelled are final.
type Status string

const (
	Pending   Status = "Pending"
	Shipped   Status = "Shipped"
	Delivered Status = "Delivered"
	Cancelled Status = "Cancelled"
)

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{Pending, Shipped, Delivered, Cancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == Delivered || s == Cancelled
}

// IsTarget reports whether s may be requested by the operator.
func (s Status) IsTarget() bool {
	return s == Shipped || s == Delivered || s == Cancelled
}

// CanTransition validates a move from s to next.
func (s Status) CanTransition(next Status) error {
	if !next.IsTarget() {
		return fmt.Errorf("%w: %q is not a valid target", ErrInvalidTransition, next)
	}
	if s.Terminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, s)
	}
	if s == next {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, s)
	}
	return nil
}

// Emoji is the icon shown next to the status in chat.
func (s Status) Emoji() string {
	switch s {
	case Pending:
		return "⏳"
	case Shipped:
		return "🚚"
	case Delivered:
		return "✅"
	case Cancelled:
		return "❌"
	}
	return "❔"
}

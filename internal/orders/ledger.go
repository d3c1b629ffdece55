package orders

import (
	"context"
	"time"
)

// Ledger stores orders and their status history. Orders are never deleted.
type Ledger interface {
	// Insert stores a new order; ErrDuplicateID if the id exists.
	Insert(ctx context.Context, o Order) error
	// Get returns ErrOrderNotFound for unknown ids.
	Get(ctx context.Context, id string) (Order, error)
	// UpdateStatus moves the order from one status to another only if it is
	// still in from; otherwise ErrConflict. A history row is appended.
	UpdateStatus(ctx context.Context, id string, from, to Status, note string, at time.Time) (Order, error)
	// ListByUser returns the user's orders, newest first, at most limit (0 = all).
	ListByUser(ctx context.Context, userID int64, limit int) ([]Order, error)
	// ListByStatus returns orders in a status, oldest first.
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	History(ctx context.Context, id string) ([]StatusChange, error)
}

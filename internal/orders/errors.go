package orders

import "errors"

var (
	// ErrEmptyCart is returned when an order is requested for an empty cart.
	ErrEmptyCart = errors.New("orders: cart is empty")
	// ErrOrderNotFound is returned for unknown order ids.
	ErrOrderNotFound = errors.New("orders: order not found")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("orders: invalid status transition")
	// ErrUnauthorized is returned when a non-operator tries to change a status.
	ErrUnauthorized = errors.New("orders: not authorized")
	// ErrConflict is returned when the stored status changed concurrently.
	ErrConflict = errors.New("orders: status changed concurrently")
	// ErrDuplicateID is returned when an order id is already stored.
	ErrDuplicateID = errors.New("orders: duplicate order id")
)

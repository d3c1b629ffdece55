package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryLedger is a mutex-guarded Ledger kept in process memory.
type MemoryLedger struct {
	mu      sync.RWMutex
	orders  map[string]Order
	order   []string
	history map[string][]StatusChange
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		orders:  make(map[string]Order),
		history: make(map[string][]StatusChange),
	}
}

// Insert implements Ledger.
func (m *MemoryLedger) Insert(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[o.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
	}
	m.orders[o.ID] = o.clone()
	m.order = append(m.order, o.ID)
	return nil
}

// Get implements Ledger.
func (m *MemoryLedger) Get(_ context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o.clone(), nil
}

// UpdateStatus implements Ledger.
func (m *MemoryLedger) UpdateStatus(_ context.Context, id string, from, to Status, note string, at time.Time) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if o.Status != from {
		return Order{}, fmt.Errorf("%w: %s is %s, expected %s", ErrConflict, id, o.Status, from)
	}
	o.Status = to
	o.Note = note
	o.UpdatedAt = at
	m.orders[id] = o
	m.history[id] = append(m.history[id], StatusChange{OrderID: id, From: from, To: to, Note: note, At: at})
	return o.clone(), nil
}

// ListByUser implements Ledger.
func (m *MemoryLedger) ListByUser(_ context.Context, userID int64, limit int) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Order
	for i := len(m.order) - 1; i >= 0; i-- {
		o := m.orders[m.order[i]]
		if o.UserID != userID {
			continue
		}
		out = append(out, o.clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListByStatus implements Ledger.
func (m *MemoryLedger) ListByStatus(_ context.Context, status Status) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Order
	for _, id := range m.order {
		if o := m.orders[id]; o.Status == status {
			out = append(out, o.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// History implements Ledger.
func (m *MemoryLedger) History(_ context.Context, id string) ([]StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.orders[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return append([]StatusChange(nil), m.history[id]...), nil
}

// Len returns the number of stored orders.
func (m *MemoryLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

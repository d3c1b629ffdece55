package cart

import (
	"sync"

	"github.com/m3rciful/grocerybot/internal/catalog"
)

type userCart struct {
	order []string
	lines map[string]*Line
}

type memoryStore struct {
	mu    sync.RWMutex
	carts map[int64]*userCart
}

// NewMemoryStore constructs an in-memory Store. Carts are volatile and lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{carts: make(map[int64]*userCart)}
}

// Add increments the quantity of an existing line or appends a new one.
func (m *memoryStore) Add(userID int64, item catalog.Item) Line {
	m.mu.Lock()
	defer m.mu.Unlock()

	uc, ok := m.carts[userID]
	if !ok {
		uc = &userCart{lines: make(map[string]*Line)}
		m.carts[userID] = uc
	}

	line := Line{Category: item.Category, Name: item.Name, UnitPrice: item.Price, Unit: item.Unit}
	key := line.Key()
	if existing, found := uc.lines[key]; found {
		existing.Quantity++
		return *existing
	}
	line.Quantity = 1
	uc.lines[key] = &line
	uc.order = append(uc.order, key)
	return line
}

// Get returns a copy of the user's lines in insertion order.
func (m *memoryStore) Get(userID int64) Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uc, ok := m.carts[userID]
	if !ok {
		return Cart{}
	}
	lines := make([]Line, 0, len(uc.order))
	for _, key := range uc.order {
		lines = append(lines, *uc.lines[key])
	}
	return Cart{Lines: lines}
}

// Clear empties the cart but keeps the user's entry.
func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uc, ok := m.carts[userID]; ok {
		uc.order = nil
		uc.lines = make(map[string]*Line)
	}
}

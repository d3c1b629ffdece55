package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/grocerybot/internal/session"
)

func TestGetUnknownUserStartsAtMainMenu(t *testing.T) {
	store := session.NewMemoryStore()
	assert.Equal(t, session.Session{Step: session.MainMenu}, store.Get(42))
}

func TestPutOverwritesWholeSession(t *testing.T) {
	store := session.NewMemoryStore()
	store.Put(1, session.Session{Step: session.AwaitingPhone, CustomerName: "Ann"})
	store.Put(1, session.Session{Step: session.AwaitingAddress, Phone: "555"})

	got := store.Get(1)
	assert.Equal(t, session.AwaitingAddress, got.Step)
	assert.Empty(t, got.CustomerName)
	assert.Equal(t, "555", got.Phone)
}

func TestPutDefaultsBlankStep(t *testing.T) {
	store := session.NewMemoryStore()
	store.Put(1, session.Session{Category: "Dairy"})
	assert.Equal(t, session.MainMenu, store.Get(1).Step)
}

func TestResetClearsFields(t *testing.T) {
	store := session.NewMemoryStore()
	store.Put(7, session.Session{Step: session.AwaitingCancelReason, PendingOrderID: "ORD-1"})
	store.Reset(7)
	assert.Equal(t, session.Session{Step: session.MainMenu}, store.Get(7))
}

func TestInCheckout(t *testing.T) {
	assert.True(t, session.AwaitingName.InCheckout())
	assert.True(t, session.AwaitingPaymentMethod.InCheckout())
	assert.False(t, session.MainMenu.InCheckout())
	assert.False(t, session.AwaitingCancelReason.InCheckout())
}

func TestConcurrentAccess(t *testing.T) {
	store := session.NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Put(id, session.Session{Step: session.AwaitingName})
			_ = store.Get(id)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, session.AwaitingName, store.Get(10).Step)
}

package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/sheets"
)

func sampleOrder() orders.Order {
	return orders.Order{
		ID:           "ORD-20260301120000-0001-abcdef12",
		UserID:       1001,
		CustomerName: "Ann Lee",
		Phone:        "+1 555 0100",
		Address:      "12 Baker Street",
		Items: []orders.Item{
			{Category: "🍎 Fruits", Name: "Apples", UnitPrice: decimal.RequireFromString("3.99"), Unit: "kg", Quantity: 2},
			{Category: "🥛 Dairy", Name: "Milk", UnitPrice: decimal.RequireFromString("2.99"), Unit: "liter", Quantity: 1},
		},
		Subtotal:    decimal.RequireFromString("10.97"),
		DeliveryFee: decimal.RequireFromString("5"),
		Total:       decimal.RequireFromString("15.97"),
		Status:      orders.Pending,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPersistPostsRow(t *testing.T) {
	var got sheets.Row
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := sheets.New(srv.URL, srv.Client(), time.Second)
	require.NoError(t, sink.Persist(context.Background(), sampleOrder()))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "ORD-20260301120000-0001-abcdef12", got.OrderID)
	assert.Equal(t, "Apples x2 (kg); Milk x1 (liter)", got.Items)
	assert.Equal(t, "10.97", got.Subtotal)
	assert.Equal(t, "5.00", got.DeliveryFee)
	assert.Equal(t, "15.97", got.Total)
	assert.Equal(t, "Pending", got.Status)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.CreatedAt)
	assert.Empty(t, got.PaymentMethod)
}

func TestPersistFailsOnNon2xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad sheet", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := sheets.New(srv.URL, srv.Client(), time.Second).Persist(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestPersistRetriesTemporaryFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := sheets.New(srv.URL, srv.Client(), time.Second).Persist(context.Background(), sampleOrder())
	assert.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPersistGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := sheets.New(srv.URL, srv.Client(), time.Second).Persist(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "429")
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmptyURLDisablesSink(t *testing.T) {
	sink := sheets.New("  ", nil, 0)
	assert.NoError(t, sink.Persist(context.Background(), sampleOrder()))
	_, isClient := sink.(*sheets.Client)
	assert.False(t, isClient)
}

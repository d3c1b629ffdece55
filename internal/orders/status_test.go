package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/orders"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		from  orders.Status
		to    orders.Status
		valid bool
	}{
		{orders.Pending, orders.Shipped, true},
		{orders.Pending, orders.Delivered, true},
		{orders.Pending, orders.Cancelled, true},
		{orders.Shipped, orders.Delivered, true},
		{orders.Shipped, orders.Cancelled, true},
		{orders.Shipped, orders.Shipped, false},
		{orders.Pending, orders.Pending, false},
		{orders.Delivered, orders.Cancelled, false},
		{orders.Cancelled, orders.Shipped, false},
		{orders.Pending, orders.Status("Lost"), false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := tc.from.CanTransition(tc.to)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, orders.ErrInvalidTransition)
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := orders.ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, orders.Shipped, st)

	_, err = orders.ParseStatus("teleported")
	assert.ErrorIs(t, err, orders.ErrInvalidTransition)
}

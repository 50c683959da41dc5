package e

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsChain(t *testing.T) {
	err := Wrap("OrderUseCase.PlaceOrder", ErrCustomerNameRequired)

	assert.ErrorIs(t, err, ErrCustomerNameRequired)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "OrderUseCase.PlaceOrder: customer name is required: invalid request", err.Error())
}

func TestNotFoundSentinels(t *testing.T) {
	for _, err := range []error{ErrOrderNotFound, ErrProductNotFound, ErrCategoryNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestMissingReferencesError(t *testing.T) {
	err := Wrap("op", NewMissingReferencesError("product", []int64{7, 42}))

	assert.ErrorIs(t, err, ErrUnresolvedReferences)
	assert.Contains(t, err.Error(), "some products were not found: [7, 42]")

	var missing *MissingReferencesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []int64{7, 42}, missing.IDs)
	assert.Equal(t, "product", missing.Kind)
}

func TestInsufficientStockError(t *testing.T) {
	err := Wrap("op", NewInsufficientStockError(3, 10, 4))

	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stock *InsufficientStockError
	require.True(t, errors.As(err, &stock))
	assert.Equal(t, int64(3), stock.ProductID)
	assert.Equal(t, 4, stock.Available)
	assert.Equal(t, 10, stock.Requested)
	assert.Contains(t, err.Error(), "Available: 4")
}

func TestUnknownOrderItemError(t *testing.T) {
	err := NewUnknownOrderItemError(1, 99)

	assert.ErrorIs(t, err, ErrUnresolvedOrderItem)
	assert.NotErrorIs(t, err, ErrUnresolvedReferences)
	assert.Equal(t, "order item with ID 99 not found in order 1", err.Error())
}

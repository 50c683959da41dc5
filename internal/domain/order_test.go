package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthBefore(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.April, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "clamps to leap february",
			in:   time.Date(2024, time.March, 31, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "clamps to february",
			in:   time.Date(2023, time.March, 30, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses year",
			in:   time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "thirty day month",
			in:   time.Date(2024, time.July, 31, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthBefore(tt.in))
		})
	}
}

func TestOrderItem(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ID: 1, ProductID: 1, Quantity: 2, UnitPrice: dec("999.99")},
		{ID: 2, ProductID: 2, Quantity: 1, UnitPrice: dec("599.99")},
	}}

	item, ok := o.Item(2)
	assert.True(t, ok)
	assert.Equal(t, int64(2), item.ProductID)

	_, ok = o.Item(3)
	assert.False(t, ok)

	assert.True(t, dec("1999.98").Equal(o.Items[0].Total()))
}

func TestProductStock(t *testing.T) {
	p := NewProduct("Laptop", "", dec("999.99"), 5)

	assert.True(t, p.CanFulfil(5))
	assert.False(t, p.CanFulfil(6))

	p.Deduct(3)
	assert.Equal(t, 2, p.StockQuantity)

	p.Restock(1)
	assert.Equal(t, 3, p.StockQuantity)
}

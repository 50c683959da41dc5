package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order описывает заказ покупателя
type Order struct {
	ID           int64
	CustomerName string
	OrderDate    time.Time
	Items        []OrderItem
}

// OrderItem — позиция заказа. UnitPrice фиксирует цену товара на момент оформления
// и не меняется вслед за ценой товара.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func NewOrder(customerName string, orderDate time.Time) *Order {
	return &Order{
		CustomerName: customerName,
		OrderDate:    orderDate,
	}
}

func NewOrderItem(productID int64, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

// Item возвращает позицию заказа по идентификатору.
func (o *Order) Item(id int64) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// Total — сумма позиции.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MonthBefore сдвигает t на один календарный месяц назад.
// Если в предыдущем месяце нет такого дня, берётся его последний день (31 марта -> 28/29 февраля).
func MonthBefore(t time.Time) time.Time {
	year, month, day := t.Date()
	prev := time.Date(year, month-1, 1, 0, 0, 0, 0, t.Location())

	if last := daysIn(prev.Year(), prev.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(prev.Year(), prev.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

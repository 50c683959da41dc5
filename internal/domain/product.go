package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal // текущая цена, NUMERIC(18,2)
	StockQuantity int
	Categories    []Category
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewProduct(name, description string, price decimal.Decimal, stockQuantity int) *Product {
	return &Product{
		Name:          name,
		Description:   description,
		Price:         price,
		StockQuantity: stockQuantity,
	}
}

// CanFulfil сообщает, хватает ли остатка на quantity единиц.
func (p *Product) CanFulfil(quantity int) bool {
	return quantity <= p.StockQuantity
}

// Deduct уменьшает остаток. Проверка CanFulfil остаётся на вызывающей стороне.
func (p *Product) Deduct(quantity int) {
	p.StockQuantity -= quantity
}

// Restock возвращает quantity единиц на склад.
func (p *Product) Restock(quantity int) {
	p.StockQuantity += quantity
}

// CategoryIDs возвращает идентификаторы категорий товара.
func (p *Product) CategoryIDs() []int64 {
	ids := make([]int64, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

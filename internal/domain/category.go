package domain

import "time"

// Category описывает категорию товаров. Связь с товарами многие-ко-многим.
type Category struct {
	ID          int64
	Name        string
	Description string
	Products    []Product
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewCategory(name, description string) *Category {
	return &Category{
		Name:        name,
		Description: description,
	}
}

// ProductIDs возвращает идентификаторы товаров категории.
func (c *Category) ProductIDs() []int64 {
	ids := make([]int64, len(c.Products))
	for i, p := range c.Products {
		ids[i] = p.ID
	}
	return ids
}

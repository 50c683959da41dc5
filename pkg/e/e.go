package e

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Базовые виды ошибок, к которым сводятся все остальные через errors.Is
	ErrInvalidRequest       = fmt.Errorf("invalid request")
	ErrNotFound             = fmt.Errorf("not found")
	ErrUnresolvedReferences = fmt.Errorf("unresolved references")
	ErrUnresolvedOrderItem  = fmt.Errorf("unresolved order item")
	ErrInsufficientStock    = fmt.Errorf("insufficient stock")

	// 404 Not Found
	ErrOrderNotFound    = Wrap("order", ErrNotFound)
	ErrProductNotFound  = Wrap("product", ErrNotFound)
	ErrCategoryNotFound = Wrap("category", ErrNotFound)

	// 400 Bad Request
	ErrCustomerNameRequired = Wrap("customer name is required", ErrInvalidRequest)
	ErrNoOrderItems         = Wrap("order items are required", ErrInvalidRequest)
	ErrQuantityNotPositive  = Wrap("quantity must be positive", ErrInvalidRequest)
	ErrProductNameRequired  = Wrap("product name is required", ErrInvalidRequest)
	ErrCategoryNameRequired = Wrap("category name is required", ErrInvalidRequest)
	ErrNoCategories         = Wrap("at least one category is required", ErrInvalidRequest)
	ErrNoProducts           = Wrap("at least one product is required", ErrInvalidRequest)
	ErrInvalidPrice         = Wrap("price must be non-negative", ErrInvalidRequest)
	ErrPricePrecision       = Wrap("price must have at most 2 decimal places", ErrInvalidRequest)
	ErrNegativeStock        = Wrap("stock quantity must be non-negative", ErrInvalidRequest)
	ErrInvalidTopN          = Wrap("n must be positive", ErrInvalidRequest)
	ErrInvalidID            = Wrap("invalid id", ErrInvalidRequest)
	ErrInvalidBody          = Wrap("invalid request body", ErrInvalidRequest)

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// MissingReferencesError перечисляет все идентификаторы, которые не удалось найти при разрешении ссылок.
type MissingReferencesError struct {
	Kind string // product | category
	IDs  []int64
}

func NewMissingReferencesError(kind string, ids []int64) *MissingReferencesError {
	return &MissingReferencesError{Kind: kind, IDs: ids}
}

func (m *MissingReferencesError) Error() string {
	ids := make([]string, len(m.IDs))
	for i, id := range m.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	return fmt.Sprintf("some %ss were not found: [%s]", m.Kind, strings.Join(ids, ", "))
}

func (m *MissingReferencesError) Unwrap() error {
	return ErrUnresolvedReferences
}

// InsufficientStockError сообщает, что запрошенное количество превышает остаток товара.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func NewInsufficientStockError(productID int64, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

func (i *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product ID %d. Available: %d", i.ProductID, i.Available)
}

func (i *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// UnknownOrderItemError возвращается, когда позиция не принадлежит обновляемому заказу.
type UnknownOrderItemError struct {
	OrderID     int64
	OrderItemID int64
}

func NewUnknownOrderItemError(orderID, orderItemID int64) *UnknownOrderItemError {
	return &UnknownOrderItemError{OrderID: orderID, OrderItemID: orderItemID}
}

func (u *UnknownOrderItemError) Error() string {
	return fmt.Sprintf("order item with ID %d not found in order %d", u.OrderItemID, u.OrderID)
}

func (u *UnknownOrderItemError) Unwrap() error {
	return ErrUnresolvedOrderItem
}

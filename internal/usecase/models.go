package usecase

import (
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ORDER USECASE

// PlaceOrderReq — запрос на оформление заказа.
type PlaceOrderReq struct {
	CustomerName string
	Items        []PlaceOrderItem
}

type PlaceOrderItem struct {
	ProductID int64
	Quantity  int
}

// UpdateOrderReq — запрос на изменение заказа. Пустое CustomerName оставляет имя без изменений.
type UpdateOrderReq struct {
	OrderID      int64
	CustomerName string
	Items        []UpdateOrderItem
}

type UpdateOrderItem struct {
	OrderItemID int64
	ProductID   int64
	Quantity    int
}

// StockPolicy определяет, как UpdateOrder пересчитывает остатки.
type StockPolicy string

const (
	// StockPolicyCumulative списывает новое количество, не возвращая прежнее.
	StockPolicyCumulative StockPolicy = "cumulative"
	// StockPolicyRestore сначала возвращает прежнее количество позиции, затем списывает новое.
	StockPolicyRestore StockPolicy = "restore"
)

// ParseStockPolicy возвращает политику по имени. Неизвестное имя даёт cumulative.
func ParseStockPolicy(s string) StockPolicy {
	if StockPolicy(s) == StockPolicyRestore {
		return StockPolicyRestore
	}
	return StockPolicyCumulative
}

// CATALOG USECASE

// ProductReq — данные для создания и изменения товара.
type ProductReq struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryIDs   []int64
}

// CategoryReq — данные для создания и изменения категории.
type CategoryReq struct {
	Name        string
	Description string
	ProductIDs  []int64
}

// REPORT USECASE

// ProductTotal — выручка по одному товару.
type ProductTotal struct {
	ProductID  int64
	TotalSales decimal.Decimal
}

// SalesReport — снимок отчёта о продажах для выгрузки в архив.
type SalesReport struct {
	GeneratedAt time.Time
	Totals      []ProductTotal
	Top         []domain.ProductSales
}

// INFRASTUCTURE

type WriteRawMessageReq struct {
	Key       string
	EventType string
	Payload   []byte
}

// MAPPERS

func NewPlaceOrderReq(customerName string, items []PlaceOrderItem) *PlaceOrderReq {
	return &PlaceOrderReq{
		CustomerName: customerName,
		Items:        items,
	}
}

func NewUpdateOrderReq(orderID int64, customerName string, items []UpdateOrderItem) *UpdateOrderReq {
	return &UpdateOrderReq{
		OrderID:      orderID,
		CustomerName: customerName,
		Items:        items,
	}
}

func NewWriteRawMessageReq(key, eventType string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}

func NewProductReq(name, description string, price decimal.Decimal, stock int, categoryIDs []int64) *ProductReq {
	return &ProductReq{
		Name:          name,
		Description:   description,
		Price:         price,
		StockQuantity: stock,
		CategoryIDs:   categoryIDs,
	}
}

func NewCategoryReq(name, description string, productIDs []int64) *CategoryReq {
	return &CategoryReq{
		Name:        name,
		Description: description,
		ProductIDs:  productIDs,
	}
}

// ToProductTotals переводит map выручки в срез, упорядоченный по ID товара.
func ToProductTotals(totals map[int64]decimal.Decimal) []ProductTotal {
	ids := domain.SortedProductIDs(totals)
	result := make([]ProductTotal, len(ids))
	for i, id := range ids {
		result[i] = ProductTotal{ProductID: id, TotalSales: totals[id]}
	}
	return result
}

package http

import (
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// REQUESTS

type PlaceOrderRequest struct {
	CustomerName string                  `json:"customer_name" example:"John Doe"`
	OrderItems   []PlaceOrderItemRequest `json:"order_items"`
}

type PlaceOrderItemRequest struct {
	ProductID int64 `json:"product_id" example:"1"`
	Quantity  int   `json:"quantity" example:"2"`
}

type UpdateOrderRequest struct {
	CustomerName string                   `json:"customer_name,omitempty"`
	OrderItems   []UpdateOrderItemRequest `json:"order_items"`
}

type UpdateOrderItemRequest struct {
	ID        int64 `json:"id" example:"1"`
	ProductID int64 `json:"product_id" example:"2"`
	Quantity  int   `json:"quantity" example:"1"`
}

type ProductRequest struct {
	Name          string          `json:"name" example:"Laptop"`
	Description   string          `json:"description" example:"Gaming Laptop"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"999.99"`
	StockQuantity int             `json:"stock_quantity" example:"50"`
	CategoryIDs   []int64         `json:"category_ids"`
}

type CategoryRequest struct {
	Name        string  `json:"name" example:"Electronics"`
	Description string  `json:"description" example:"Electronic Devices"`
	ProductIDs  []int64 `json:"product_ids"`
}

func (r *PlaceOrderRequest) toUseCase() *usecase.PlaceOrderReq {
	items := make([]usecase.PlaceOrderItem, len(r.OrderItems))
	for i, it := range r.OrderItems {
		items[i] = usecase.PlaceOrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return usecase.NewPlaceOrderReq(r.CustomerName, items)
}

func (r *UpdateOrderRequest) toUseCase(orderID int64) *usecase.UpdateOrderReq {
	items := make([]usecase.UpdateOrderItem, len(r.OrderItems))
	for i, it := range r.OrderItems {
		items[i] = usecase.UpdateOrderItem{OrderItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return usecase.NewUpdateOrderReq(orderID, r.CustomerName, items)
}

func (r *ProductRequest) toUseCase() *usecase.ProductReq {
	return usecase.NewProductReq(r.Name, r.Description, r.Price, r.StockQuantity, r.CategoryIDs)
}

func (r *CategoryRequest) toUseCase() *usecase.CategoryReq {
	return usecase.NewCategoryReq(r.Name, r.Description, r.ProductIDs)
}

// RESPONSES

type OrderResponse struct {
	ID           int64               `json:"id"`
	CustomerName string              `json:"customer_name"`
	OrderDate    time.Time           `json:"order_date"`
	OrderItems   []OrderItemResponse `json:"order_items"`
}

type OrderItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

type ProductResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Price         decimal.Decimal   `json:"price" swaggertype:"string"`
	StockQuantity int               `json:"stock_quantity"`
	Categories    []CategorySummary `json:"categories"`
}

type CategorySummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Products    []ProductSummary `json:"products"`
}

type ProductSummary struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price" swaggertype:"string"`
	StockQuantity int             `json:"stock_quantity"`
}

type SalesTotalResponse struct {
	ProductID  int64           `json:"product_id"`
	TotalSales decimal.Decimal `json:"total_sales" swaggertype:"string"`
}

type ProductSalesResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSales  decimal.Decimal `json:"total_sales" swaggertype:"string"`
}

type ExportResponse struct {
	Key string `json:"key"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return OrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		OrderDate:    o.OrderDate,
		OrderItems:   items,
	}
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	result := make([]OrderResponse, len(orders))
	for i := range orders {
		result[i] = toOrderResponse(&orders[i])
	}
	return result
}

func toProductResponse(p *domain.Product) ProductResponse {
	categories := make([]CategorySummary, len(p.Categories))
	for i, c := range p.Categories {
		categories[i] = CategorySummary{ID: c.ID, Name: c.Name, Description: c.Description}
	}
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Categories:    categories,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, len(products))
	for i := range products {
		result[i] = toProductResponse(&products[i])
	}
	return result
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	products := make([]ProductSummary, len(c.Products))
	for i, p := range c.Products {
		products[i] = ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, StockQuantity: p.StockQuantity}
	}
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Products:    products,
	}
}

func toCategoryResponses(categories []domain.Category) []CategoryResponse {
	result := make([]CategoryResponse, len(categories))
	for i := range categories {
		result[i] = toCategoryResponse(&categories[i])
	}
	return result
}

func toSalesTotalResponses(totals map[int64]decimal.Decimal) []SalesTotalResponse {
	ids := domain.SortedProductIDs(totals)
	result := make([]SalesTotalResponse, len(ids))
	for i, id := range ids {
		result[i] = SalesTotalResponse{ProductID: id, TotalSales: totals[id]}
	}
	return result
}

func toProductSalesResponses(top []domain.ProductSales) []ProductSalesResponse {
	result := make([]ProductSalesResponse, len(top))
	for i, p := range top {
		result[i] = ProductSalesResponse{ProductID: p.ProductID, ProductName: p.ProductName, TotalSales: p.TotalSales}
	}
	return result
}

package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error)
	UpdateOrder(ctx context.Context, req *UpdateOrderReq) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	OrdersInLastMonth(ctx context.Context) ([]domain.Order, error)
}

type ProductUC interface {
	CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type CategoryUC interface {
	CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) (*domain.Category, error)
}

type ReportUC interface {
	TotalSalesByProduct(ctx context.Context) (map[int64]decimal.Decimal, error)
	TopNProductsBySales(ctx context.Context, n int) ([]domain.ProductSales, error)
	ExportSalesReport(ctx context.Context, n int) (string, error)
}

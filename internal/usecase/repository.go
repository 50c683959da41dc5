package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// GetByID возвращает товар вместе с категориями.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetForUpdate блокирует строку товара до конца транзакции. Категории не загружаются.
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
	UpdateStock(ctx context.Context, id int64, stockQuantity int) error
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	// GetByID возвращает категорию вместе с товарами.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) (*domain.Category, error)
}

type OrderRepository interface {
	// Create сохраняет заказ и его позиции, заполняя сгенерированные идентификаторы.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update сохраняет имя покупателя и все позиции заказа.
	Update(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type SalesRepository interface {
	SaleLines(ctx context.Context) ([]domain.SaleLine, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// CacheRepository кэширует результаты отчётов. Промах возвращается как ok == false без ошибки.
// Каждая инвалидация увеличивает поколение кэша. Запись с устаревшим gen молча отбрасывается,
// поэтому gen нужно прочитать до чтения БД.
type CacheRepository interface {
	ReportGeneration(ctx context.Context) (int64, error)
	GetSalesTotals(ctx context.Context) (totals map[int64]decimal.Decimal, ok bool, err error)
	SetSalesTotals(ctx context.Context, gen int64, totals map[int64]decimal.Decimal) error
	// GetSalesRanking возвращает полный рейтинг: все товары каталога с продажами.
	GetSalesRanking(ctx context.Context) (ranking []domain.ProductSales, ok bool, err error)
	SetSalesRanking(ctx context.Context, gen int64, ranking []domain.ProductSales) error
	InvalidateReports(ctx context.Context) error
}

type ReportArchive interface {
	Save(ctx context.Context, report *SalesReport) (string, error)
}

// TxManager выполняет fn в одной транзакции: ошибка fn откатывает все изменения.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

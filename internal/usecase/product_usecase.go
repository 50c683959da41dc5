package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

const (
	categoryKind   = "category"
	pricePrecision = 2
)

// ProductUseCase реализует управление товарами каталога.
type ProductUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cacheRepo    CacheRepository
	txManager    TxManager
	logger       logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateProduct создаёт товар. Все категории должны существовать, иначе товар не создаётся.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := validateProduct(req, true); err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Product
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		categories, err := p.resolveCategories(ctx, req.CategoryIDs)
		if err != nil {
			return err
		}

		product := domain.NewProduct(req.Name, req.Description, req.Price, req.StockQuantity)
		product.Categories = categories

		created, err = p.productRepo.Create(ctx, product)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct перезаписывает поля товара и заменяет набор категорий.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := validateProduct(req, false); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		categories, err := p.resolveCategories(ctx, req.CategoryIDs)
		if err != nil {
			return err
		}

		product.Name = req.Name
		product.Description = req.Description
		product.Price = req.Price
		product.StockQuantity = req.StockQuantity
		product.Categories = categories

		updated, err = p.productRepo.Update(ctx, product)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Название товара участвует в рейтинге продаж
	p.invalidateReports(ctx, op)
	return updated, nil
}

func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

func (p *ProductUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// ProductsByCategory возвращает товары категории. Для неизвестной категории результат пустой.
func (p *ProductUseCase) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	const op = "ProductUseCase.ProductsByCategory"

	products, err := p.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// DeleteProduct удаляет товар. История продаж сохраняется, но товар выпадает из рейтинга.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.DeleteProduct"

	product, err := p.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateReports(ctx, op)
	return product, nil
}

// resolveCategories загружает категории по ID и собирает все ненайденные в одну ошибку.
func (p *ProductUseCase) resolveCategories(ctx context.Context, ids []int64) ([]domain.Category, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	categories, err := p.categoryRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if missing := missingIDs(ids, categories, func(c domain.Category) int64 { return c.ID }); len(missing) > 0 {
		return nil, e.NewMissingReferencesError(categoryKind, missing)
	}

	return categories, nil
}

func (p *ProductUseCase) invalidateReports(ctx context.Context, op string) {
	if err := p.cacheRepo.InvalidateReports(ctx); err != nil {
		p.logger.Warnf("Failed to invalidate report cache: %v", e.Wrap(op, err))
	}
}

// validateProduct проверяет входные данные товара. При создании нужна хотя бы одна категория.
func validateProduct(req *ProductReq, requireCategories bool) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price.IsNegative() {
		return e.ErrInvalidPrice
	}

	if !req.Price.Equal(req.Price.Truncate(pricePrecision)) {
		return e.ErrPricePrecision
	}

	if req.StockQuantity < 0 {
		return e.ErrNegativeStock
	}

	if requireCategories && len(req.CategoryIDs) == 0 {
		return e.ErrNoCategories
	}

	return nil
}

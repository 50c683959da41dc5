package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

// CategoryUseCase реализует управление категориями и их составом.
type CategoryUseCase struct {
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	txManager    TxManager
	logger       logger.Logger
}

func NewCategoryUC(
	categoryRepo CategoryRepository,
	productRepo ProductRepository,
	txManager TxManager,
	logger logger.Logger,
) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateCategory создаёт категорию и привязывает к ней товары. Нужен хотя бы один товар.
func (c *CategoryUseCase) CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "CategoryUseCase.CreateCategory"

	if strings.TrimSpace(req.Name) == "" {
		return nil, e.Wrap(op, e.ErrCategoryNameRequired)
	}
	if len(req.ProductIDs) == 0 {
		return nil, e.Wrap(op, e.ErrNoProducts)
	}

	var created *domain.Category
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		products, err := c.resolveProducts(ctx, req.ProductIDs)
		if err != nil {
			return err
		}

		category := domain.NewCategory(req.Name, req.Description)
		category.Products = products

		created, err = c.categoryRepo.Create(ctx, category)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Debugf("category %d created with %d products", created.ID, len(created.Products))
	return created, nil
}

// UpdateCategory перезаписывает имя и описание и заменяет набор товаров.
func (c *CategoryUseCase) UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error) {
	const op = "CategoryUseCase.UpdateCategory"

	if strings.TrimSpace(req.Name) == "" {
		return nil, e.Wrap(op, e.ErrCategoryNameRequired)
	}

	var updated *domain.Category
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		category, err := c.categoryRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		products, err := c.resolveProducts(ctx, req.ProductIDs)
		if err != nil {
			return err
		}

		category.Name = req.Name
		category.Description = req.Description
		category.Products = products

		updated, err = c.categoryRepo.Update(ctx, category)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

func (c *CategoryUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	const op = "CategoryUseCase.GetCategory"

	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (c *CategoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CategoryUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

func (c *CategoryUseCase) DeleteCategory(ctx context.Context, id int64) (*domain.Category, error) {
	const op = "CategoryUseCase.DeleteCategory"

	category, err := c.categoryRepo.Delete(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

// resolveProducts загружает товары по ID и собирает все ненайденные в одну ошибку.
func (c *CategoryUseCase) resolveProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := c.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if missing := missingIDs(ids, products, func(p domain.Product) int64 { return p.ID }); len(missing) > 0 {
		return nil, e.NewMissingReferencesError(productKind, missing)
	}

	return products, nil
}

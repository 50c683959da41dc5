package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const categoryColumns = `id, name, description, created_at, updated_at`

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool        *pgxpool.Pool
	conv        converter.CategoryConverter
	productConv converter.ProductConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter, productConv converter.ProductConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv, productConv: productConv}
}

// Create сохраняет категорию и привязывает к ней товары.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.Querier(ctx, c.pool)

	query := `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING ` + categoryColumns

	model := c.conv.ToModel(category)
	created, err := scanCategory(q.QueryRow(ctx, query, model.Name, model.Description))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := replaceCategoryLinks(ctx, q, created.ID, category.ProductIDs()); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := c.conv.ToEntity(created)
	result.Products = category.Products
	return result, nil
}

// Update перезаписывает поля категории и заменяет набор товаров.
func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.Querier(ctx, c.pool)

	query := `
		UPDATE categories
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	model := c.conv.ToModel(category)
	updated, err := scanCategory(q.QueryRow(ctx, query, model.ID, model.Name, model.Description))
	if err != nil {
		if isNoRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := replaceCategoryLinks(ctx, q, category.ID, category.ProductIDs()); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := c.conv.ToEntity(updated)
	result.Products = category.Products
	return result, nil
}

// GetByID возвращает категорию вместе с товарами.
func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	q := tr.Querier(ctx, c.pool)

	model, err := scanCategory(q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := c.loadProducts(ctx, []int64{id})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	category := c.conv.ToEntity(model)
	category.Products = products[id]
	return category, nil
}

func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	models, err := c.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ids := make([]int64, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	products, err := c.loadProducts(ctx, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Category, 0, len(models))
	for i := range models {
		category := c.conv.ToEntity(&models[i])
		category.Products = products[category.ID]
		result = append(result, *category)
	}

	return result, nil
}

// ListByIDs возвращает найденные категории без товаров.
func (c *CategoryRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Category, error) {
	models, err := c.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Category, 0, len(models))
	for i := range models {
		result = append(result, *c.conv.ToEntity(&models[i]))
	}

	return result, nil
}

// Delete удаляет категорию. Сами товары остаются, удаляются только связи.
func (c *CategoryRepo) Delete(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tag, err := tr.Querier(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return category, nil
}

func (c *CategoryRepo) query(ctx context.Context, query string, args ...any) ([]converter.CategoryModel, error) {
	rows, err := tr.Querier(ctx, c.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	models := make([]converter.CategoryModel, 0)
	for rows.Next() {
		model, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *model)
	}

	return models, rows.Err()
}

// loadProducts возвращает товары категорий, сгруппированные по ID категории.
func (c *CategoryRepo) loadProducts(ctx context.Context, categoryIDs []int64) (map[int64][]domain.Product, error) {
	result := make(map[int64][]domain.Product, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pc.category_id, p.id, p.name, p.description, p.price, p.stock_quantity, p.created_at, p.updated_at
		FROM product_categories pc
		JOIN products p ON p.id = pc.product_id
		WHERE pc.category_id = ANY($1)
		ORDER BY p.id
	`

	rows, err := tr.Querier(ctx, c.pool).Query(ctx, query, categoryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			categoryID int64
			model      converter.ProductModel
		)
		if err := rows.Scan(
			&categoryID, &model.ID, &model.Name, &model.Description, &model.Price,
			&model.StockQuantity, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[categoryID] = append(result[categoryID], *c.productConv.ToEntity(&model))
	}

	return result, rows.Err()
}

func scanCategory(row pgx.Row) (*converter.CategoryModel, error) {
	var model converter.CategoryModel
	if err := row.Scan(&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, err
	}

	return &model, nil
}

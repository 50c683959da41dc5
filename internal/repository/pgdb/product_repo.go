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

const productColumns = `id, name, description, price, stock_quantity, created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool    *pgxpool.Pool
	conv    converter.ProductConverter
	catConv converter.CategoryConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter, catConv converter.CategoryConverter) *ProductRepo {
	return &ProductRepo{
		pool:    pool,
		conv:    conv,
		catConv: catConv,
	}
}

// Create сохраняет товар и его связи с категориями.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.Querier(ctx, p.pool)

	query := `
		INSERT INTO products (name, description, price, stock_quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	created, err := scanProduct(q.QueryRow(ctx, query, model.Name, model.Description, model.Price, model.StockQuantity))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := replaceProductLinks(ctx, q, created.ID, product.CategoryIDs()); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := p.conv.ToEntity(created)
	result.Categories = product.Categories
	return result, nil
}

// Update перезаписывает поля товара и заменяет набор категорий.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.Querier(ctx, p.pool)

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	updated, err := scanProduct(q.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Price, model.StockQuantity,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := replaceProductLinks(ctx, q, product.ID, product.CategoryIDs()); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := p.conv.ToEntity(updated)
	result.Categories = product.Categories
	return result, nil
}

// GetByID возвращает товар вместе с категориями.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := tr.Querier(ctx, p.pool)

	model, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.withCategories(ctx, []converter.ProductModel{*model})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &products[0], nil
}

// GetForUpdate блокирует строку товара (SELECT ... FOR UPDATE) до конца текущей транзакции.
func (p *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// List возвращает все товары с категориями, упорядоченные по ID.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	models, err := p.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.withCategories(ctx, models)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// ListByIDs возвращает найденные товары без категорий. Отсутствующие ID пропускаются.
func (p *ProductRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	models, err := p.query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Product, 0, len(models))
	for i := range models {
		result = append(result, *p.conv.ToEntity(&models[i]))
	}

	return result, nil
}

// ListByCategory возвращает товары категории с их категориями.
func (p *ProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.stock_quantity, p.created_at, p.updated_at
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE pc.category_id = $1
		ORDER BY p.id
	`

	models, err := p.query(ctx, query, categoryID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.withCategories(ctx, models)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// Names возвращает названия существующих товаров по ID.
func (p *ProductRepo) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	rows, err := tr.Querier(ctx, p.pool).Query(ctx, `SELECT id, name FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return names, nil
}

// UpdateStock записывает новый остаток товара.
func (p *ProductRepo) UpdateStock(ctx context.Context, id int64, stockQuantity int) error {
	query := `UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tr.Querier(ctx, p.pool).Exec(ctx, query, id, stockQuantity)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// Delete удаляет товар и возвращает его последнее состояние. Связи с категориями удаляются каскадно,
// позиции заказов остаются.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tag, err := tr.Querier(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return product, nil
}

func (p *ProductRepo) query(ctx context.Context, query string, args ...any) ([]converter.ProductModel, error) {
	rows, err := tr.Querier(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	models := make([]converter.ProductModel, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *model)
	}

	return models, rows.Err()
}

// withCategories подгружает категории одним запросом для всех товаров.
func (p *ProductRepo) withCategories(ctx context.Context, models []converter.ProductModel) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(models))
	if len(models) == 0 {
		return result, nil
	}

	ids := make([]int64, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	categories, err := loadCategories(ctx, tr.Querier(ctx, p.pool), p.catConv, ids)
	if err != nil {
		return nil, err
	}

	for i := range models {
		product := p.conv.ToEntity(&models[i])
		product.Categories = categories[product.ID]
		result = append(result, *product)
	}

	return result, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	if err := row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Price,
		&model.StockQuantity, &model.CreatedAt, &model.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &model, nil
}

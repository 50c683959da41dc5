package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isNoRows сообщает, что запрос не вернул строк.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// postgresDuplicate сообщает о нарушении уникального ограничения.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// loadCategories возвращает категории товаров, сгруппированные по ID товара.
func loadCategories(ctx context.Context, q trmpgx.Tr, conv converter.CategoryConverter, productIDs []int64) (map[int64][]domain.Category, error) {
	query := `
		SELECT pc.product_id, c.id, c.name, c.description, c.created_at, c.updated_at
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.id
	`

	rows, err := q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]domain.Category, len(productIDs))
	for rows.Next() {
		var (
			productID int64
			model     converter.CategoryModel
		)
		if err := rows.Scan(&productID, &model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], *conv.ToEntity(&model))
	}

	return result, rows.Err()
}

// replaceProductLinks заменяет набор категорий товара.
func replaceProductLinks(ctx context.Context, q trmpgx.Tr, productID int64, categoryIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := q.Exec(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, productID, categoryIDs)
	return err
}

// replaceCategoryLinks заменяет набор товаров категории.
func replaceCategoryLinks(ctx context.Context, q trmpgx.Tr, categoryID int64, productIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM product_categories WHERE category_id = $1`, categoryID); err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	_, err := q.Exec(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT unnest($2::bigint[]), $1
		ON CONFLICT DO NOTHING
	`, categoryID, productIDs)
	return err
}

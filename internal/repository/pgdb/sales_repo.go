package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// SalesRepo читает строки продаж из позиций заказов. Агрегация выполняется в domain.
type SalesRepo struct {
	pool *pgxpool.Pool
}

func NewSalesRepo(pool *pgxpool.Pool) *SalesRepo {
	return &SalesRepo{pool: pool}
}

// SaleLines возвращает все позиции заказов, включая позиции удалённых товаров.
func (s *SalesRepo) SaleLines(ctx context.Context) ([]domain.SaleLine, error) {
	rows, err := tr.Querier(ctx, s.pool).Query(ctx, `SELECT product_id, quantity, unit_price FROM order_items ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0)
	for rows.Next() {
		var line domain.SaleLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return lines, nil
}

package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo хранит заказы и их позиции.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

// Create вставляет заказ и его позиции одним батчем и проставляет сгенерированные ID.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	q := tr.Querier(ctx, o.pool)

	query := `INSERT INTO orders (customer_name, order_date) VALUES ($1, $2) RETURNING id, order_date`
	if err := q.QueryRow(ctx, query, order.CustomerName, order.OrderDate).Scan(&order.ID, &order.OrderDate); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	order.OrderDate = order.OrderDate.UTC()

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).QueryRow(func(row pgx.Row) error {
			return row.Scan(&item.ID)
		})
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

// Update сохраняет имя покупателя и текущее состояние всех позиций.
func (o *OrderRepo) Update(ctx context.Context, order *domain.Order) error {
	q := tr.Querier(ctx, o.pool)

	batch := &pgx.Batch{}
	batch.Queue(`UPDATE orders SET customer_name = $2 WHERE id = $1`, order.ID, order.CustomerName)
	for _, item := range order.Items {
		batch.Queue(`
			UPDATE order_items
			SET product_id = $3, quantity = $4, unit_price = $5
			WHERE id = $1 AND order_id = $2
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice)
	}

	results := q.SendBatch(ctx, batch)
	tag, err := results.Exec()
	if err != nil {
		results.Close()
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		results.Close()
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	if err := results.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := o.get(ctx, tr.Querier(ctx, o.pool), `SELECT id, customer_name, order_date FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

// GetForUpdate блокирует заказ до конца текущей транзакции.
func (o *OrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	order, err := o.get(ctx, tx, `SELECT id, customer_name, order_date FROM orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

func (o *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := o.list(ctx, `SELECT id, customer_name, order_date FROM orders ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return orders, nil
}

// ListSince возвращает заказы с order_date не раньше since.
func (o *OrderRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	query := `SELECT id, customer_name, order_date FROM orders WHERE order_date >= $1 ORDER BY order_date, id`

	orders, err := o.list(ctx, query, since)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return orders, nil
}

// Delete удаляет заказ. Позиции удаляются каскадно.
func (o *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Querier(ctx, o.pool).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (o *OrderRepo) get(ctx context.Context, q queryRower, query string, id int64) (*domain.Order, error) {
	var model converter.OrderModel
	if err := q.QueryRow(ctx, query, id).Scan(&model.ID, &model.CustomerName, &model.OrderDate); err != nil {
		if isNoRows(err) {
			return nil, e.ErrOrderNotFound
		}
		return nil, err
	}

	items, err := o.loadItems(ctx, tr.Querier(ctx, o.pool), []int64{id})
	if err != nil {
		return nil, err
	}

	return o.conv.ToEntity(&model, items[id]), nil
}

func (o *OrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	q := tr.Querier(ctx, o.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	models := make([]converter.OrderModel, 0)
	for rows.Next() {
		var model converter.OrderModel
		if err := rows.Scan(&model.ID, &model.CustomerName, &model.OrderDate); err != nil {
			rows.Close()
			return nil, err
		}
		models = append(models, model)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	items, err := o.loadItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Order, 0, len(models))
	for i := range models {
		result = append(result, *o.conv.ToEntity(&models[i], items[models[i].ID]))
	}

	return result, nil
}

// loadItems возвращает позиции заказов, сгруппированные по ID заказа.
func (o *OrderRepo) loadItems(ctx context.Context, q trmpgx.Tr, orderIDs []int64) (map[int64][]converter.OrderItemModel, error) {
	result := make(map[int64][]converter.OrderItemModel, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var model converter.OrderItemModel
		if err := rows.Scan(&model.ID, &model.OrderID, &model.ProductID, &model.Quantity, &model.UnitPrice); err != nil {
			return nil, err
		}
		result[model.OrderID] = append(result[model.OrderID], model)
	}

	return result, rows.Err()
}

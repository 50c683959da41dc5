package tr

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/jackc/pgx/v5"
)

// Querier возвращает транзакцию, открытую менеджером транзакций, либо db, если транзакции в контексте нет.
func Querier(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста.
// Нужен там, где запрос без транзакции не имеет смысла (SELECT ... FOR UPDATE).
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	t := trmcontext.DefaultManager.Default(ctx)
	if t == nil || !t.IsActive() {
		return nil, e.ErrTransactionNotFound
	}

	tx, ok := t.Transaction().(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}

	return tx, nil
}

// InTx сообщает, выполняется ли код внутри транзакции.
func InTx(ctx context.Context) bool {
	t := trmcontext.DefaultManager.Default(ctx)
	return t != nil && t.IsActive()
}

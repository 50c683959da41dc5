package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/jitter"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Коды ошибок PostgreSQL, после которых транзакцию имеет смысл повторить целиком.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

const (
	defaultBaseBackoff = 50 * time.Millisecond
	defaultMaxBackoff  = time.Second
)

// TxRunner — всё, что умеет выполнить функцию в транзакции (trm manager.Manager).
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// RetryingTxManager повторяет транзакцию при serialization failure, deadlock и lock timeout.
type RetryingTxManager struct {
	next        TxRunner
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      logger.Logger
}

// NewTxManager создаёт менеджер транзакций поверх пула pgx с повтором транзиентных ошибок.
func NewTxManager(pool *pgxpool.Pool, maxRetries int, log logger.Logger) *RetryingTxManager {
	return NewRetryingTxManager(
		manager.Must(trmpgx.NewDefaultFactory(pool)),
		maxRetries,
		defaultBaseBackoff,
		defaultMaxBackoff,
		log,
	)
}

func NewRetryingTxManager(next TxRunner, maxRetries int, baseBackoff, maxBackoff time.Duration, log logger.Logger) *RetryingTxManager {
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &RetryingTxManager{
		next:        next,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		logger:      log,
	}
}

// Do выполняет fn в транзакции. Вложенный вызов повторно не запускается:
// повторять имеет смысл только внешнюю транзакцию.
func (m *RetryingTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tr.InTx(ctx) {
		return m.next.Do(ctx, fn)
	}

	for attempt := 0; ; attempt++ {
		err := m.next.Do(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt >= m.maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", m.maxRetries, err)
		}

		delay := jitter.ExponentialBackoff(m.baseBackoff, m.maxBackoff, attempt, jitter.DefaultJitter)
		m.logger.Warnf("retrying transaction, attempt %d/%d in %s: %v", attempt+1, m.maxRetries, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// IsRetryable сообщает, что ошибка вызвана конкурентным доступом и транзакцию можно повторить.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	default:
		return false
	}
}

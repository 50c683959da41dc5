package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	errs  []error
	calls int
}

func (s *scriptedRunner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	return fn(ctx)
}

func pgErr(code string) error {
	return fmt.Errorf("OrderUseCase.PlaceOrder: %w", &pgconn.PgError{Code: code})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(pgErr("40001")))
	assert.True(t, IsRetryable(pgErr("40P01")))
	assert.True(t, IsRetryable(pgErr("55P03")))
	assert.False(t, IsRetryable(pgErr("23505")))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}

func TestRetryingTxManagerRetriesTransientErrors(t *testing.T) {
	runner := &scriptedRunner{errs: []error{pgErr("40001"), pgErr("40P01")}}
	m := NewRetryingTxManager(runner, 3, time.Millisecond, 5*time.Millisecond, logger.Nop{})

	executed := 0
	err := m.Do(context.Background(), func(ctx context.Context) error {
		executed++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 1, executed)
}

func TestRetryingTxManagerStopsOnPermanentError(t *testing.T) {
	runner := &scriptedRunner{errs: []error{pgErr("23514")}}
	m := NewRetryingTxManager(runner, 3, time.Millisecond, 5*time.Millisecond, logger.Nop{})

	err := m.Do(context.Background(), func(ctx context.Context) error { return nil })

	require.Error(t, err)
	assert.Equal(t, 1, runner.calls)
}

func TestRetryingTxManagerGivesUp(t *testing.T) {
	runner := &scriptedRunner{errs: []error{pgErr("40001"), pgErr("40001"), pgErr("40001")}}
	m := NewRetryingTxManager(runner, 2, time.Millisecond, 5*time.Millisecond, logger.Nop{})

	err := m.Do(context.Background(), func(ctx context.Context) error { return nil })

	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "max retries (2) exceeded")
	assert.Equal(t, 3, runner.calls)
}

func TestRetryingTxManagerHonoursContext(t *testing.T) {
	runner := &scriptedRunner{errs: []error{pgErr("40001"), pgErr("40001")}}
	m := NewRetryingTxManager(runner, 5, time.Second, time.Second, logger.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.Do(ctx, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, runner.calls)
}

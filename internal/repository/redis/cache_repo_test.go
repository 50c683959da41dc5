package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-backend/pkg/clients"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupCache(t *testing.T) *CacheRepo {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisCfg := &cfg.RedisCfg{
		Addr:        fmt.Sprintf("%s:%s", host, port.Port()),
		DialTimeout: 5 * time.Second,
		Timeout:     3 * time.Second,
		ReportTTL:   time.Minute,
	}

	client := clients.NewRedisClient(redisCfg)
	require.NoError(t, client.Ping(ctx))
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheRepo(client, converter.NewReportConverter(), redisCfg, logger.Nop{})
}

func TestCacheRepoSalesTotals(t *testing.T) {
	repo := setupCache(t)
	ctx := context.Background()

	_, ok, err := repo.GetSalesTotals(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := repo.ReportGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	totals := map[int64]decimal.Decimal{
		1: decimal.RequireFromString("1999.98"),
		2: decimal.RequireFromString("599.99"),
	}
	require.NoError(t, repo.SetSalesTotals(ctx, gen, totals))

	got, ok, err := repo.GetSalesTotals(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.True(t, totals[1].Equal(got[1]))
	assert.True(t, totals[2].Equal(got[2]))
}

func TestCacheRepoSalesRanking(t *testing.T) {
	repo := setupCache(t)
	ctx := context.Background()

	ranking := []domain.ProductSales{
		{ProductID: 1, ProductName: "Laptop", TotalSales: decimal.RequireFromString("1999.98")},
		{ProductID: 2, ProductName: "Smartphone", TotalSales: decimal.RequireFromString("1099.99")},
	}
	require.NoError(t, repo.SetSalesRanking(ctx, 0, ranking))

	got, ok, err := repo.GetSalesRanking(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Laptop", got[0].ProductName)
	assert.True(t, ranking[1].TotalSales.Equal(got[1].TotalSales))
}

func TestCacheRepoInvalidateReports(t *testing.T) {
	repo := setupCache(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSalesTotals(ctx, 0, map[int64]decimal.Decimal{1: decimal.NewFromInt(10)}))
	require.NoError(t, repo.SetSalesRanking(ctx, 0, []domain.ProductSales{}))

	require.NoError(t, repo.InvalidateReports(ctx))

	_, ok, err := repo.GetSalesTotals(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.GetSalesRanking(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := repo.ReportGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestCacheRepoSkipsWriteFromOldGeneration(t *testing.T) {
	repo := setupCache(t)
	ctx := context.Background()

	gen, err := repo.ReportGeneration(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.InvalidateReports(ctx))

	require.NoError(t, repo.SetSalesTotals(ctx, gen, map[int64]decimal.Decimal{1: decimal.NewFromInt(10)}))
	require.NoError(t, repo.SetSalesRanking(ctx, gen, []domain.ProductSales{
		{ProductID: 1, ProductName: "Laptop", TotalSales: decimal.NewFromInt(10)},
	}))

	_, ok, err := repo.GetSalesTotals(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.GetSalesRanking(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := repo.ReportGeneration(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SetSalesTotals(ctx, current, map[int64]decimal.Decimal{1: decimal.NewFromInt(10)}))

	_, ok, err = repo.GetSalesTotals(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

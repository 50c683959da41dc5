package minio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	failures int
	calls    int
	bucket   string
	key      string
	body     []byte
	opts     minio.PutObjectOptions
}

func (f *fakePutter) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader,
	_ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.calls++
	if f.calls <= f.failures {
		return minio.UploadInfo{}, errors.New("connection reset")
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	f.bucket, f.key, f.body, f.opts = bucketName, objectName, body, opts
	return minio.UploadInfo{Bucket: bucketName, Key: objectName}, nil
}

func testReport() *usecase.SalesReport {
	return &usecase.SalesReport{
		GeneratedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Totals: []usecase.ProductTotal{
			{ProductID: 1, TotalSales: decimal.RequireFromString("1999.98")},
		},
		Top: []domain.ProductSales{
			{ProductID: 1, ProductName: "Laptop", TotalSales: decimal.RequireFromString("1999.98")},
		},
	}
}

func TestReportRepoSave(t *testing.T) {
	putter := &fakePutter{}
	repo := NewReportRepo(putter, &cfg.MinIOCfg{ReportBucket: "reports"}, logger.Nop{})

	key, err := repo.Save(context.Background(), testReport())
	require.NoError(t, err)

	assert.Equal(t, "reports", putter.bucket)
	assert.Equal(t, putter.key, key)
	assert.True(t, strings.HasPrefix(key, "sales/2024/03/15/103000-"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, "application/json", putter.opts.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(putter.body, &body))
	top := body["top"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "1999.98", top[0].(map[string]any)["total_sales"])
}

func TestReportRepoSaveRetries(t *testing.T) {
	putter := &fakePutter{failures: 1}
	repo := NewReportRepo(putter, &cfg.MinIOCfg{ReportBucket: "reports"}, logger.Nop{})

	_, err := repo.Save(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, 2, putter.calls)
}

func TestReportRepoSaveGivesUp(t *testing.T) {
	putter := &fakePutter{failures: 10}
	repo := NewReportRepo(putter, &cfg.MinIOCfg{ReportBucket: "reports"}, logger.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Save(ctx, testReport())
	require.Error(t, err)
	assert.Equal(t, 1, putter.calls)
}

package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/jitter"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
)

const (
	reportContentType = "application/json"
	putAttempts       = 3
	putBaseBackoff    = 200 * time.Millisecond
	putMaxBackoff     = 2 * time.Second
)

// ObjectPutter — часть *minio.Client, нужная архиву.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader,
		objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ReportRepo сохраняет снимки отчётов о продажах в MinIO.
type ReportRepo struct {
	mc     ObjectPutter
	cfg    *cfg.MinIOCfg
	logger logger.Logger
}

func NewReportRepo(mc ObjectPutter, cfg *cfg.MinIOCfg, logger logger.Logger) *ReportRepo {
	return &ReportRepo{
		mc:     mc,
		cfg:    cfg,
		logger: logger,
	}
}

type reportModel struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Totals      []productTotalModel `json:"totals"`
	Top         []productSalesModel `json:"top"`
}

type productTotalModel struct {
	ProductID  int64           `json:"product_id"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type productSalesModel struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// Save выгружает отчёт JSON-объектом и возвращает его ключ.
// Ключ вида sales/2006/01/02/150405-<uuid>.json.
func (r *ReportRepo) Save(ctx context.Context, report *usecase.SalesReport) (string, error) {
	data, err := json.Marshal(toReportModel(report))
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	key := reportKey(report.GeneratedAt, uuid.NewString())

	for attempt := 0; ; attempt++ {
		info, err := r.mc.PutObject(ctx, r.cfg.ReportBucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: reportContentType,
		})
		if err == nil {
			return info.Key, nil
		}

		if attempt+1 >= putAttempts {
			return "", e.Wrap(whereami.WhereAmI(), err)
		}

		r.logger.Warnf("report upload attempt %d failed: %v", attempt+1, err)

		select {
		case <-time.After(jitter.ExponentialBackoff(putBaseBackoff, putMaxBackoff, attempt, jitter.DefaultJitter)):
		case <-ctx.Done():
			return "", e.Wrap(whereami.WhereAmI(), ctx.Err())
		}
	}
}

func reportKey(generatedAt time.Time, id string) string {
	return fmt.Sprintf("sales/%s-%s.json", generatedAt.UTC().Format("2006/01/02/150405"), id)
}

func toReportModel(report *usecase.SalesReport) reportModel {
	model := reportModel{
		GeneratedAt: report.GeneratedAt,
		Totals:      make([]productTotalModel, len(report.Totals)),
		Top:         make([]productSalesModel, len(report.Top)),
	}
	for i, t := range report.Totals {
		model.Totals[i] = productTotalModel{ProductID: t.ProductID, TotalSales: t.TotalSales}
	}
	for i, p := range report.Top {
		model.Top[i] = productSalesModel{ProductID: p.ProductID, ProductName: p.ProductName, TotalSales: p.TotalSales}
	}
	return model
}

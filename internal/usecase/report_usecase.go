package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const backgroundCacheTimeout = 500 * time.Millisecond

// ReportUseCase считает выручку по товарам и рейтинг продаж.
type ReportUseCase struct {
	salesRepo   SalesRepository
	productRepo ProductRepository
	cacheRepo   CacheRepository
	archive     ReportArchive
	logger      logger.Logger
	now         func() time.Time
}

func NewReportUC(
	salesRepo SalesRepository,
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	archive ReportArchive,
	logger logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		salesRepo:   salesRepo,
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		archive:     archive,
		logger:      logger,
		now:         time.Now,
	}
}

// TotalSalesByProduct возвращает сумму quantity * unitPrice по каждому проданному товару.
func (r *ReportUseCase) TotalSalesByProduct(ctx context.Context) (map[int64]decimal.Decimal, error) {
	const op = "ReportUseCase.TotalSalesByProduct"

	totals, ok, err := r.cacheRepo.GetSalesTotals(ctx)
	if err != nil {
		r.logger.Warnf("Failed to read sales totals from cache: %v", e.Wrap(op, err))
	}
	if ok {
		return totals, nil
	}

	gen, genErr := r.cacheRepo.ReportGeneration(ctx)

	totals, err = r.salesTotals(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if genErr != nil {
		r.logger.Warnf("Skip caching sales totals: %v", e.Wrap(op, genErr))
		return totals, nil
	}

	// Фоновое добавление в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := r.cacheRepo.SetSalesTotals(bgCtx, gen, totals); err != nil {
			r.logger.Warnf("Failed to cache sales totals in background: %v", e.Wrap(op, err))
		}
	}()

	return totals, nil
}

// TopNProductsBySales возвращает n товаров с наибольшей выручкой среди тех, что ещё есть в каталоге.
// При равной выручке выше товар с меньшим ID. В кэше лежит один полный рейтинг на все n.
func (r *ReportUseCase) TopNProductsBySales(ctx context.Context, n int) ([]domain.ProductSales, error) {
	const op = "ReportUseCase.TopNProductsBySales"

	if n <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidTopN)
	}

	ranking, ok, err := r.cacheRepo.GetSalesRanking(ctx)
	if err != nil {
		r.logger.Warnf("Failed to read sales ranking from cache: %v", e.Wrap(op, err))
	}
	if ok {
		return limitRanking(ranking, n), nil
	}

	gen, genErr := r.cacheRepo.ReportGeneration(ctx)

	totals, err := r.salesTotals(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	ranking, err = r.rank(ctx, totals, len(totals))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if genErr != nil {
		r.logger.Warnf("Skip caching sales ranking: %v", e.Wrap(op, genErr))
		return limitRanking(ranking, n), nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := r.cacheRepo.SetSalesRanking(bgCtx, gen, ranking); err != nil {
			r.logger.Warnf("Failed to cache sales ranking in background: %v", e.Wrap(op, err))
		}
	}()

	return limitRanking(ranking, n), nil
}

// ExportSalesReport выгружает снимок отчёта в архив и возвращает ключ объекта.
// Снимок всегда строится по БД, минуя кэш.
func (r *ReportUseCase) ExportSalesReport(ctx context.Context, n int) (string, error) {
	const op = "ReportUseCase.ExportSalesReport"

	if n <= 0 {
		return "", e.Wrap(op, e.ErrInvalidTopN)
	}

	totals, err := r.salesTotals(ctx)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	top, err := r.rank(ctx, totals, n)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	report := &SalesReport{
		GeneratedAt: r.now().UTC(),
		Totals:      ToProductTotals(totals),
		Top:         top,
	}

	key, err := r.archive.Save(ctx, report)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	r.logger.Infof("sales report exported: %s", key)
	return key, nil
}

func (r *ReportUseCase) salesTotals(ctx context.Context) (map[int64]decimal.Decimal, error) {
	lines, err := r.salesRepo.SaleLines(ctx)
	if err != nil {
		return nil, err
	}

	return domain.SalesTotals(lines), nil
}

// rank оставляет в рейтинге только товары, которые есть в каталоге.
func (r *ReportUseCase) rank(ctx context.Context, totals map[int64]decimal.Decimal, n int) ([]domain.ProductSales, error) {
	if len(totals) == 0 {
		return []domain.ProductSales{}, nil
	}

	names, err := r.productRepo.Names(ctx, domain.SortedProductIDs(totals))
	if err != nil {
		return nil, err
	}

	return domain.RankBySales(totals, names, n), nil
}

func limitRanking(ranking []domain.ProductSales, n int) []domain.ProductSales {
	if n < len(ranking) {
		return ranking[:n:n]
	}
	return ranking
}

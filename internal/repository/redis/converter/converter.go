package converter

import (
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportConverter преобразует результаты отчётов в модели кэша и обратно.
type ReportConverter interface {
	TotalsToRedisModel(totals map[int64]decimal.Decimal) []SalesTotalRedisModel
	TotalsToDomain(models []SalesTotalRedisModel) map[int64]decimal.Decimal
	TopToRedisModel(top []domain.ProductSales) []ProductSalesRedisModel
	TopToDomain(models []ProductSalesRedisModel) []domain.ProductSales
}

type reportConverter struct{}

func NewReportConverter() ReportConverter {
	return reportConverter{}
}

func (reportConverter) TotalsToRedisModel(totals map[int64]decimal.Decimal) []SalesTotalRedisModel {
	ids := domain.SortedProductIDs(totals)
	result := make([]SalesTotalRedisModel, len(ids))
	for i, id := range ids {
		result[i] = SalesTotalRedisModel{ProductID: id, TotalSales: totals[id]}
	}
	return result
}

func (reportConverter) TotalsToDomain(models []SalesTotalRedisModel) map[int64]decimal.Decimal {
	result := make(map[int64]decimal.Decimal, len(models))
	for _, m := range models {
		result[m.ProductID] = m.TotalSales
	}
	return result
}

func (reportConverter) TopToRedisModel(top []domain.ProductSales) []ProductSalesRedisModel {
	result := make([]ProductSalesRedisModel, len(top))
	for i, p := range top {
		result[i] = ProductSalesRedisModel{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			TotalSales:  p.TotalSales,
		}
	}
	return result
}

func (reportConverter) TopToDomain(models []ProductSalesRedisModel) []domain.ProductSales {
	result := make([]domain.ProductSales, len(models))
	for i, m := range models {
		result[i] = domain.ProductSales{
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			TotalSales:  m.TotalSales,
		}
	}
	return result
}

package converter

import "github.com/shopspring/decimal"

// SalesTotalRedisModel — выручка одного товара в кэше. Сумма хранится строкой без потери точности.
type SalesTotalRedisModel struct {
	ProductID  int64           `json:"product_id"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type ProductSalesRedisModel struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

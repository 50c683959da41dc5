package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultTopN — размер рейтинга по умолчанию.
const DefaultTopN = 5

// SaleLine — проданная позиция, из которой считается выручка.
type SaleLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// ProductSales — строка рейтинга продаж.
type ProductSales struct {
	ProductID   int64
	ProductName string
	TotalSales  decimal.Decimal
}

// SalesTotals суммирует quantity * unitPrice по каждому товару.
// Товары без продаж в результат не попадают.
func SalesTotals(lines []SaleLine) map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal)
	for _, l := range lines {
		amount := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		totals[l.ProductID] = totals[l.ProductID].Add(amount)
	}
	return totals
}

// RankBySales строит рейтинг товаров по выручке.
// names ограничивает рейтинг товарами, которые ещё есть в каталоге.
// Сортировка по убыванию выручки, при равенстве по возрастанию ID.
func RankBySales(totals map[int64]decimal.Decimal, names map[int64]string, n int) []ProductSales {
	ranked := make([]ProductSales, 0, len(totals))
	for id, total := range totals {
		name, ok := names[id]
		if !ok {
			continue
		}
		ranked = append(ranked, ProductSales{ProductID: id, ProductName: name, TotalSales: total})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].TotalSales.Cmp(ranked[j].TotalSales); c != 0 {
			return c > 0
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// SortedProductIDs возвращает ID из totals по возрастанию (стабильный порядок для ответов API).
func SortedProductIDs(totals map[int64]decimal.Decimal) []int64 {
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

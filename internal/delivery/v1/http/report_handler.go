package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUC
	defaultTopN   int
	logger        logger.Logger
}

func NewReportHandler(reportUsecase usecase.ReportUC, defaultTopN int, logger logger.Logger) *ReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase, defaultTopN: defaultTopN, logger: logger}
}

// totalSales
//
//	@Summary		Выручка по товарам
//	@Description	Сумма quantity * unit_price по всем позициям заказов, по возрастанию ID товара
//	@Tags			reports
//	@Produce		json
//	@Success		200	{array}	SalesTotalResponse
//	@Router			/reports/sales/total [get]
func (h *ReportHandler) totalSales(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reportUsecase.TotalSalesByProduct(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSalesTotalResponses(totals))
}

// topProducts
//
//	@Summary		Топ товаров по выручке
//	@Description	Удаленные товары в рейтинг не попадают
//	@Tags			reports
//	@Produce		json
//	@Param			n	query	int	false	"Размер топа"
//	@Success		200	{array}	ProductSalesResponse
//	@Failure		400	{object}	ErrorResponse	"n должно быть положительным"
//	@Router			/reports/sales/top [get]
func (h *ReportHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	n, err := queryTopN(r, h.defaultTopN)
	if err != nil {
		h.fail(w, err)
		return
	}

	top, err := h.reportUsecase.TopNProductsBySales(r.Context(), n)
	if err != nil {
		h.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductSalesResponses(top))
}

// exportReport
//
//	@Summary		Выгрузка отчета в архив
//	@Description	Сохраняет снимок выручки и топа в объектное хранилище
//	@Tags			reports
//	@Produce		json
//	@Param			n	query		int	false	"Размер топа"
//	@Success		201	{object}	ExportResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/reports/sales/export [post]
func (h *ReportHandler) exportReport(w http.ResponseWriter, r *http.Request) {
	n, err := queryTopN(r, h.defaultTopN)
	if err != nil {
		h.fail(w, err)
		return
	}

	key, err := h.reportUsecase.ExportSalesReport(r.Context(), n)
	if err != nil {
		h.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, ExportResponse{Key: key})
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Warnf("%s", err.Error())
	WriteError(w, err)
}

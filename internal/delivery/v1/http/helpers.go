package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/go-chi/chi/v5"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	Kind       string  `json:"kind,omitempty"`
	MissingIDs []int64 `json:"missing_ids,omitempty"`
	ProductID  *int64  `json:"product_id,omitempty"`
	Available  *int    `json:"available,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse сводит ошибку use case к HTTP-ответу. Порядок веток важен:
// типизированные ошибки проверяются раньше базовых видов.
func ToHTTPResponse(err error) *ErrorResponse {
	var (
		missing *e.MissingReferencesError
		stock   *e.InsufficientStockError
		item    *e.UnknownOrderItemError
	)

	switch {
	case errors.As(err, &missing):
		resp := NewErrorResponse(http.StatusNotFound, missing.Error())
		resp.Kind = missing.Kind
		resp.MissingIDs = missing.IDs
		return resp
	case errors.As(err, &stock):
		resp := NewErrorResponse(http.StatusConflict, stock.Error())
		resp.ProductID = &stock.ProductID
		resp.Available = &stock.Available
		return resp
	case errors.As(err, &item):
		return NewErrorResponse(http.StatusBadRequest, item.Error())
	case errors.Is(err, e.ErrInvalidRequest):
		return NewErrorResponse(http.StatusBadRequest, rootMessage(err, e.ErrInvalidRequest))
	case errors.Is(err, e.ErrNotFound):
		return NewErrorResponse(http.StatusNotFound, rootMessage(err, e.ErrNotFound))
	default:
		return NewErrorResponse(http.StatusInternalServerError, e.ErrInternalServerError.Error())
	}
}

// rootMessage возвращает текст самой конкретной ошибки над базовым видом,
// без префиксов операций ("product: not found", "quantity must be positive: invalid request").
func rootMessage(err, kind error) string {
	last := err
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if cur == kind {
			break
		}
		last = cur
	}
	return last.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	resp := ToHTTPResponse(err)
	WriteSuccess(w, resp.Code, resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса, ограничивая его размер. Ошибка разбора оборачивается в ErrInvalidBody
// и остаётся в цепочке.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", e.ErrInvalidBody, err)
	}

	return nil
}

// pathID разбирает положительный идентификатор из параметра маршрута.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(name, e.ErrInvalidID)
	}

	return id, nil
}

// queryTopN читает параметр n. Пустое значение даёт def.
func queryTopN(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Wrap(raw, e.ErrInvalidTopN)
	}

	return n, nil
}

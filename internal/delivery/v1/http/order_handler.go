package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// placeOrder
//
//	@Summary		Оформление заказа
//	@Description	Создает заказ, фиксирует цены позиций и списывает остатки
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		PlaceOrderRequest	true	"Заказ"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404		{object}	ErrorResponse	"Товары не найдены"
//	@Failure		409		{object}	ErrorResponse	"Недостаточно товара на складе"
//	@Router			/orders [post]
func (o *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		o.fail(w, err)
		return
	}

	order, err := o.orderUsecase.PlaceOrder(r.Context(), req.toUseCase())
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}

// updateOrder
//
//	@Summary		Изменение заказа
//	@Description	Меняет имя покупателя и позиции заказа. Позиции адресуются по id
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"ID заказа"
//	@Param			order	body		UpdateOrderRequest	true	"Изменения"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/orders/{id} [put]
func (o *OrderHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		o.fail(w, err)
		return
	}

	var req UpdateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		o.fail(w, err)
		return
	}

	order, err := o.orderUsecase.UpdateOrder(r.Context(), req.toUseCase(id))
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// deleteOrder
//
//	@Summary	Удаление заказа
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	OrderResponse	"Удаленный заказ"
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [delete]
func (o *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		o.fail(w, err)
		return
	}

	order, err := o.orderUsecase.DeleteOrder(r.Context(), id)
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// getOrder
//
//	@Summary	Заказ по ID
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		o.fail(w, err)
		return
	}

	order, err := o.orderUsecase.GetOrder(r.Context(), id)
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// listOrders
//
//	@Summary	Все заказы
//	@Tags		orders
//	@Produce	json
//	@Success	200	{array}	OrderResponse
//	@Router		/orders [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := o.orderUsecase.ListOrders(r.Context())
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponses(orders))
}

// ordersInLastMonth
//
//	@Summary		Заказы за последний месяц
//	@Description	Заказы с датой не раньше того же числа предыдущего месяца
//	@Tags			orders
//	@Produce		json
//	@Success		200	{array}	OrderResponse
//	@Router			/orders/last-month [get]
func (o *OrderHandler) ordersInLastMonth(w http.ResponseWriter, r *http.Request) {
	orders, err := o.orderUsecase.OrdersInLastMonth(r.Context())
	if err != nil {
		o.fail(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponses(orders))
}

func (o *OrderHandler) fail(w http.ResponseWriter, err error) {
	o.logger.Warnf("%s", err.Error())
	WriteError(w, err)
}

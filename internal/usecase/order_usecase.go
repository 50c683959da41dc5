package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

const productKind = "product"

// OrderUseCase реализует оформление, изменение и удаление заказов со списанием остатков.
type OrderUseCase struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	txManager   TxManager
	logger      logger.Logger
	stockPolicy StockPolicy
	now         func() time.Time
}

func NewOrderUC(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	logger logger.Logger,
	stockPolicy StockPolicy,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		txManager:   txManager,
		logger:      logger,
		stockPolicy: stockPolicy,
		now:         time.Now,
	}
}

// PlaceOrder оформляет заказ: проверяет все позиции, фиксирует цены и списывает остатки одной транзакцией.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.PlaceOrder"

	// Валидация до обращения к хранилищу
	if err := validatePlaceOrder(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var placed *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		stage := newStockStage(o.productRepo)
		missing := newMissingSet()
		order := domain.NewOrder(req.CustomerName, o.now().UTC())

		for _, line := range req.Items {
			product, err := stage.get(ctx, line.ProductID)
			if errors.Is(err, e.ErrProductNotFound) {
				missing.add(line.ProductID)
				continue
			}
			if err != nil {
				return err
			}

			if err := stage.deduct(product, line.Quantity); err != nil {
				return err
			}

			order.Items = append(order.Items, domain.NewOrderItem(product.ID, line.Quantity, product.Price))
		}

		if !missing.empty() {
			return e.NewMissingReferencesError(productKind, missing.ids)
		}

		created, err := o.orderRepo.Create(ctx, order)
		if err != nil {
			return err
		}

		if err := stage.flush(ctx); err != nil {
			return err
		}

		if err := o.publish(ctx, OrderPlaced, created); err != nil {
			return err
		}

		placed = created
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateReports(ctx, op)
	return placed, nil
}

// UpdateOrder меняет позиции существующего заказа. Каждая позиция должна принадлежать заказу.
func (o *OrderUseCase) UpdateOrder(ctx context.Context, req *UpdateOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateOrder"

	if err := validateUpdateOrder(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := o.orderRepo.GetForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}

		if name := strings.TrimSpace(req.CustomerName); name != "" {
			order.CustomerName = req.CustomerName
		}

		stage := newStockStage(o.productRepo)
		missing := newMissingSet()

		for _, line := range req.Items {
			item, ok := order.Item(line.OrderItemID)
			if !ok {
				return e.NewUnknownOrderItemError(order.ID, line.OrderItemID)
			}

			if o.stockPolicy == StockPolicyRestore {
				if err := o.restoreItemStock(ctx, stage, item); err != nil {
					return err
				}
			}

			product, err := stage.get(ctx, line.ProductID)
			if errors.Is(err, e.ErrProductNotFound) {
				missing.add(line.ProductID)
				continue
			}
			if err != nil {
				return err
			}

			if err := stage.deduct(product, line.Quantity); err != nil {
				return err
			}

			item.ProductID = product.ID
			item.Quantity = line.Quantity
			item.UnitPrice = product.Price
		}

		if !missing.empty() {
			return e.NewMissingReferencesError(productKind, missing.ids)
		}

		if err := o.orderRepo.Update(ctx, order); err != nil {
			return err
		}

		if err := stage.flush(ctx); err != nil {
			return err
		}

		if err := o.publish(ctx, OrderUpdated, order); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateReports(ctx, op)
	return updated, nil
}

// DeleteOrder удаляет заказ вместе с позициями. Остатки не возвращаются.
func (o *OrderUseCase) DeleteOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.DeleteOrder"

	var deleted *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := o.orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := o.orderRepo.Delete(ctx, id); err != nil {
			return err
		}

		if err := o.publish(ctx, OrderDeleted, order); err != nil {
			return err
		}

		deleted = order
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateReports(ctx, op)
	return deleted, nil
}

func (o *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

func (o *OrderUseCase) ListOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "OrderUseCase.ListOrders"

	orders, err := o.orderRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// OrdersInLastMonth возвращает заказы не старше одного календарного месяца (граница включительно).
func (o *OrderUseCase) OrdersInLastMonth(ctx context.Context) ([]domain.Order, error) {
	const op = "OrderUseCase.OrdersInLastMonth"

	since := domain.MonthBefore(o.now().UTC())
	orders, err := o.orderRepo.ListSince(ctx, since)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// restoreItemStock возвращает на склад прежнее количество позиции.
// Если товар позиции уже удалён из каталога, возвращать некуда.
func (o *OrderUseCase) restoreItemStock(ctx context.Context, stage *stockStage, item *domain.OrderItem) error {
	product, err := stage.get(ctx, item.ProductID)
	if errors.Is(err, e.ErrProductNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	stage.restock(product, item.Quantity)
	return nil
}

// publish пишет событие в outbox в текущей транзакции.
func (o *OrderUseCase) publish(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	event, err := NewOrderEvent(eventType, order, o.now().UTC())
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, event)
	return err
}

// invalidateReports сбрасывает кэш отчётов. Ошибка кэша не влияет на результат операции.
func (o *OrderUseCase) invalidateReports(ctx context.Context, op string) {
	if err := o.cacheRepo.InvalidateReports(ctx); err != nil {
		o.logger.Warnf("Failed to invalidate report cache: %v", e.Wrap(op, err))
	}
}

func validatePlaceOrder(req *PlaceOrderReq) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return e.ErrCustomerNameRequired
	}

	if len(req.Items) == 0 {
		return e.ErrNoOrderItems
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return e.ErrQuantityNotPositive
		}
	}

	return nil
}

func validateUpdateOrder(req *UpdateOrderReq) error {
	if len(req.Items) == 0 {
		return e.ErrNoOrderItems
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return e.ErrQuantityNotPositive
		}
	}

	return nil
}

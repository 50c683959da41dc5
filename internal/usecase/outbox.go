package usecase

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	OrderPlaced  OutboxEventType = "order.placed"
	OrderUpdated OutboxEventType = "order.updated"
	OrderDeleted OutboxEventType = "order.deleted"
)

// OutboxEvent — событие, записанное в той же транзакции, что и изменение заказа.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Key — ключ сообщения в Kafka: события одного заказа попадают в одну партицию.
func (o *OutboxEvent) Key() string {
	return strconv.FormatInt(o.AggregateID, 10)
}

type orderEventPayload struct {
	EventID      string             `json:"event_id"`
	EventType    OutboxEventType    `json:"event_type"`
	OccurredAt   time.Time          `json:"occurred_at"`
	OrderID      int64              `json:"order_id"`
	CustomerName string             `json:"customer_name"`
	OrderDate    time.Time          `json:"order_date"`
	Items        []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderEvent собирает событие об изменении заказа.
func NewOrderEvent(eventType OutboxEventType, order *domain.Order, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	items := make([]orderItemPayload, len(order.Items))
	for i, it := range order.Items {
		items[i] = orderItemPayload{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	payload, err := json.Marshal(orderEventPayload{
		EventID:      eventID,
		EventType:    eventType,
		OccurredAt:   now,
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		OrderDate:    order.OrderDate,
		Items:        items,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}

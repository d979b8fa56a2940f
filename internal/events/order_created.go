package events

import (
	"time"

	"github.com/google/uuid"
	"nixtia-store/internal/domain"
)

const (
	OrderCreatedEventName    = "OrderCreated"
	OrderCreatedEventVersion = 1
	producerName             = "nixtia-store"
)

type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID       string      `json:"orderId"`
	OrderNumber   string      `json:"orderNumber"`
	CustomerPhone string      `json:"customerPhone"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderItem `json:"items"`
	TotalAmount   string      `json:"totalAmount"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type OrderCreatedEnvelope = Envelope[OrderCreatedPayload]

// BuildOrderCreated wraps o in a v1 OrderCreated envelope. An empty
// correlationID gets a fresh one.
func BuildOrderCreated(o domain.Order, correlationID string, now time.Time) OrderCreatedEnvelope {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
		})
	}

	return OrderCreatedEnvelope{
		EventName:     OrderCreatedEventName,
		EventVersion:  OrderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producerName,
		PartitionKey:  o.ID,
		OccurredAt:    now.UTC(),
		Payload: OrderCreatedPayload{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerPhone: o.CustomerPhone,
			PaymentMethod: string(o.PaymentMethod),
			Items:         items,
			TotalAmount:   o.TotalAmount.StringFixed(2),
			CreatedAt:     o.CreatedAt,
		},
	}
}

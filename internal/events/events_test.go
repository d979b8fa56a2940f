package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nixtia-store/internal/domain"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleOrder() domain.Order {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:            "11111111-2222-3333-4444-555555555555",
		OrderNumber:   "NX-2025-000042",
		CustomerPhone: "+5215512345678",
		PaymentMethod: domain.PaymentCashOnDelivery,
		Items: []domain.CartItem{
			{ProductID: "a", Name: "Masa", Price: decimal.RequireFromString("45"), Quantity: 2},
		},
		TotalAmount:   decimal.RequireFromString("90"),
		PaymentStatus: domain.PaymentStatusPending,
		OrderStatus:   domain.OrderStatusConfirmed,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestBuildOrderCreated(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 1, 0, time.FixedZone("CST", -6*3600))
	env := BuildOrderCreated(sampleOrder(), "corr-1", now)

	require.NoError(t, env.Validate(OrderCreatedEventName, OrderCreatedEventVersion))
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.Equal(t, "90.00", env.Payload.TotalAmount)
	assert.Equal(t, "NX-2025-000042", env.Payload.OrderNumber)
	require.Len(t, env.Payload.Items, 1)
	assert.Equal(t, "45.00", env.Payload.Items[0].Price)
}

func TestBuildOrderCreated_GeneratesCorrelationID(t *testing.T) {
	env := BuildOrderCreated(sampleOrder(), "", time.Now())
	assert.NotEmpty(t, env.CorrelationID)
	assert.NotEqual(t, env.EventID, env.CorrelationID)
}

func TestEnvelopeValidate(t *testing.T) {
	env := BuildOrderCreated(sampleOrder(), "c", time.Now())
	assert.Error(t, env.Validate("OrderCompleted", 1))
	assert.Error(t, env.Validate(OrderCreatedEventName, 2))

	env.PartitionKey = ""
	assert.Error(t, env.Validate(OrderCreatedEventName, OrderCreatedEventVersion))
}

func TestPublishOrderCreated(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, now: func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }}

	require.NoError(t, p.PublishOrderCreated(context.Background(), sampleOrder(), "corr-9"))
	assert.Equal(t, EventsExchange, ch.exchange)
	assert.Equal(t, OrderCreatedRoutingKey, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "corr-9", ch.msg.CorrelationId)

	var env OrderCreatedEnvelope
	require.NoError(t, json.Unmarshal(ch.msg.Body, &env))
	assert.Equal(t, ch.msg.MessageId, env.EventID)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", env.PartitionKey)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublishOrderCreated_ChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{ch: ch, now: time.Now}

	assert.EqualError(t, p.PublishOrderCreated(context.Background(), sampleOrder(), ""), "channel closed")
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCardOnDelivery PaymentMethod = "CARD_ON_DELIVERY"
	PaymentStripe         PaymentMethod = "STRIPE"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a guest checkout. Only the two status fields change after creation.
type Order struct {
	ID             string
	OrderNumber    string
	CustomerPhone  string
	PaymentMethod  PaymentMethod
	Items          []CartItem
	TotalAmount    decimal.Decimal
	PaymentStatus  PaymentStatus
	OrderStatus    OrderStatus
	IdempotencyKey *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderNumberFunc renders the human-readable number for the seq-th order of a year.
type OrderNumberFunc func(year int, seq int64) string

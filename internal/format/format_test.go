package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"nixtia-store/internal/domain"
)

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"+521234567890":    "+52 123 456 7890",
		"+52 123 456 7890": "+52 123 456 7890",
		"+11234567890":     "+1 123 456 7890",
		"+541234567890":    "+54 123 456 7890",
		"+5215512345678":   "+52 155 123 45678",
		"+4412345":         "+441 234 5",
		"1234567890":       "1234567890",
		"invalid":          "invalid",
	}
	for in, want := range cases {
		assert.Equal(t, want, Phone(in), "input %q", in)
	}
}

func TestPrice(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00 MXN",
		"45":        "$45.00 MXN",
		"120.5":     "$120.50 MXN",
		"1234.5":    "$1,234.50 MXN",
		"999999.99": "$999,999.99 MXN",
		"1000000":   "$1,000,000.00 MXN",
		"-12.345":   "-$12.35 MXN",
	}
	for in, want := range cases {
		assert.Equal(t, want, Price(decimal.RequireFromString(in)), "input %s", in)
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Transferencia", PaymentMethod(domain.PaymentBankTransfer))
	assert.Equal(t, "Efectivo", PaymentMethod(domain.PaymentCashOnDelivery))
	assert.Equal(t, "Tarjeta", PaymentMethod(domain.PaymentCardOnDelivery))
	assert.Equal(t, "Stripe", PaymentMethod(domain.PaymentStripe))
	assert.Equal(t, "PAYPAL", PaymentMethod("PAYPAL"))

	assert.Equal(t, "Confirmado", OrderStatus(domain.OrderStatusConfirmed))
	assert.Equal(t, "Listo", OrderStatus(domain.OrderStatusReady))
	assert.Equal(t, "Cancelado", OrderStatus(domain.OrderStatusCancelled))
	assert.Equal(t, "Fallido", PaymentStatus(domain.PaymentStatusFailed))
	assert.Equal(t, "Pendiente", PaymentStatus(domain.PaymentStatusPending))
}

func TestInstructions(t *testing.T) {
	ins, ok := Instructions(domain.PaymentBankTransfer, "NX-2025-000042")
	assert.True(t, ok)
	if assert.NotNil(t, ins.Bank) {
		assert.Equal(t, "NX-2025-000042", ins.Bank.Reference)
		assert.Equal(t, "012345678901234567", ins.Bank.CLABE)
	}
	assert.Empty(t, StoreBankAccount.Reference)

	ins, ok = Instructions(domain.PaymentCashOnDelivery, "NX-2025-000042")
	assert.True(t, ok)
	assert.Nil(t, ins.Bank)
	assert.Equal(t, "Cash on Delivery", ins.Title)

	_, ok = Instructions("PAYPAL", "x")
	assert.False(t, ok)
}

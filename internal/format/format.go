// Package format renders order data for people: phone numbers, peso
// amounts, Spanish status labels and payment instructions.
package format

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
)

var (
	twoDigitCode   = regexp.MustCompile(`^\+\d{2}`)
	threeDigitCode = regexp.MustCompile(`^\+\d{3}`)
)

// Phone renders an E.164 number in groups, e.g. "+521234567890" becomes
// "+52 123 456 7890". Unrecognized input is returned unchanged.
func Phone(phone string) string {
	cleaned := strings.Join(strings.Fields(phone), "")

	if strings.HasPrefix(cleaned, "+52") && len(cleaned) == 13 {
		return cleaned[:3] + " " + cleaned[3:6] + " " + cleaned[6:9] + " " + cleaned[9:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		return phone
	}

	var code, number string
	switch {
	case strings.HasPrefix(cleaned, "+1"):
		code, number = cleaned[:2], cleaned[2:]
	case twoDigitCode.MatchString(cleaned) && len(cleaned) >= 12:
		code, number = cleaned[:3], cleaned[3:]
	case threeDigitCode.MatchString(cleaned):
		code, number = cleaned[:4], cleaned[4:]
	default:
		return phone
	}

	if len(number) == 10 || len(number) == 11 {
		return code + " " + number[:3] + " " + number[3:6] + " " + number[6:]
	}
	return code + " " + groupsOf(number, 3)
}

func groupsOf(s string, n int) string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Price renders an amount in Mexican pesos, e.g. "$1,234.50 MXN".
func Price(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString("." + frac + " MXN")
	return b.String()
}

var paymentMethodLabels = map[domain.PaymentMethod]string{
	domain.PaymentBankTransfer:   "Transferencia",
	domain.PaymentCashOnDelivery: "Efectivo",
	domain.PaymentCardOnDelivery: "Tarjeta",
	domain.PaymentStripe:         "Stripe",
}

var orderStatusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:   "Pendiente",
	domain.OrderStatusConfirmed: "Confirmado",
	domain.OrderStatusPreparing: "Preparando",
	domain.OrderStatusReady:     "Listo",
	domain.OrderStatusDelivered: "Entregado",
	domain.OrderStatusCancelled: "Cancelado",
}

var paymentStatusLabels = map[domain.PaymentStatus]string{
	domain.PaymentStatusPending:   "Pendiente",
	domain.PaymentStatusConfirmed: "Confirmado",
	domain.PaymentStatusFailed:    "Fallido",
}

// PaymentMethod returns the Spanish label for m, or the raw code when unknown.
func PaymentMethod(m domain.PaymentMethod) string {
	if label, ok := paymentMethodLabels[m]; ok {
		return label
	}
	return string(m)
}

func OrderStatus(s domain.OrderStatus) string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func PaymentStatus(s domain.PaymentStatus) string {
	if label, ok := paymentStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

package format

import "nixtia-store/internal/domain"

// BankDetails are the account shoppers transfer to.
type BankDetails struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	CLABE         string `json:"clabe"`
	Beneficiary   string `json:"beneficiary"`
	Reference     string `json:"reference"`
}

var StoreBankAccount = BankDetails{
	BankName:      "BBVA Bancomer",
	AccountNumber: "0123456789",
	CLABE:         "012345678901234567",
	Beneficiary:   "Nixtia Artisan Foods",
}

type PaymentInstructions struct {
	Title string       `json:"title"`
	Body  string       `json:"body"`
	Note  string       `json:"note"`
	Bank  *BankDetails `json:"bank,omitempty"`
}

// Instructions tells the shopper how to pay for an order. Bank transfers use
// the order number as the transfer reference. The second result is false for
// an unknown method.
func Instructions(method domain.PaymentMethod, orderNumber string) (PaymentInstructions, bool) {
	switch method {
	case domain.PaymentBankTransfer:
		bank := StoreBankAccount
		bank.Reference = orderNumber
		return PaymentInstructions{
			Title: "Bank Transfer Details",
			Body:  "Transfer the total amount using the order number as reference.",
			Note:  `Send the transfer confirmation via WhatsApp using the "Contact Us" button.`,
			Bank:  &bank,
		}, true
	case domain.PaymentCashOnDelivery:
		return PaymentInstructions{
			Title: "Cash on Delivery",
			Body:  "Pay in cash when your order is delivered.",
			Note:  "Have exact change ready if possible to make the process smoother.",
		}, true
	case domain.PaymentCardOnDelivery:
		return PaymentInstructions{
			Title: "Card on Delivery",
			Body:  "Pay with card when your order is delivered.",
			Note:  "We accept Visa, Mastercard, and American Express.",
		}, true
	case domain.PaymentStripe:
		return PaymentInstructions{
			Title: "Card Payment (Online)",
			Body:  "Your payment was processed securely through Stripe.",
			Note:  "You should receive a payment receipt via email shortly.",
		}, true
	}
	return PaymentInstructions{}, false
}

package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// maxAmount is the largest value the NUMERIC(12,2) money columns hold.
var maxAmount = decimal.RequireFromString("9999999999.99")

// CheckoutInput is a checkout request that passed validation.
type CheckoutInput struct {
	CustomerPhone string
	PaymentMethod domain.PaymentMethod
	Items         []domain.CartItem
}

type checkoutRequest struct {
	CustomerPhone string        `json:"customerPhone" validate:"required,phone_e164"`
	PaymentMethod string        `json:"paymentMethod" validate:"required,payment_method"`
	Items         []itemRequest `json:"items" validate:"min=1,dive"`
}

type itemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0,lte=9999999999.99"`
	Quantity  int             `json:"quantity" validate:"min=1,max=99"`
	ImageURL  *string         `json:"image_url"`
}

// Validator checks raw checkout bodies. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	methods  []domain.PaymentMethod
}

func NewValidator(allowStripe bool) *Validator {
	methods := []domain.PaymentMethod{
		domain.PaymentBankTransfer,
		domain.PaymentCashOnDelivery,
		domain.PaymentCardOnDelivery,
	}
	if allowStripe {
		methods = append(methods, domain.PaymentStripe)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("phone_e164", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register phone_e164: %v", err))
	}
	if err := v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		m := domain.PaymentMethod(fl.Field().String())
		for _, allowed := range methods {
			if m == allowed {
				return true
			}
		}
		return false
	}); err != nil {
		panic(fmt.Sprintf("register payment_method: %v", err))
	}

	return &Validator{validate: v, methods: methods}
}

// Validate decodes body and reports every failing field at once.
func (v *Validator) Validate(body []byte) (CheckoutInput, error) {
	c := &issueCollector{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		c.add("invalid_type", "", "Expected a JSON object")
		return CheckoutInput{}, c.err()
	}

	var req checkoutRequest
	req.CustomerPhone, _ = c.stringField(fields, "customerPhone", "Phone number is required")
	req.PaymentMethod, _ = c.stringField(fields, "paymentMethod", "Payment method is required")
	req.Items = c.items(fields)

	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return CheckoutInput{}, err
		}
		for _, fe := range verrs {
			field := fe.Namespace()
			if i := strings.IndexByte(field, '.'); i >= 0 {
				field = field[i+1:]
			}
			if c.reported(field) {
				continue
			}
			code, msg := v.describe(fe)
			c.add(code, field, msg)
		}
	}
	if len(c.issues) == 0 {
		total := decimal.Zero
		for _, it := range req.Items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if total.Round(2).GreaterThan(maxAmount) {
			c.add("too_big", "items", "Order total must be at most "+maxAmount.StringFixed(2))
		}
	}
	if len(c.issues) > 0 {
		return CheckoutInput{}, c.err()
	}

	in := CheckoutInput{
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Items:         make([]domain.CartItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, domain.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return in, nil
}

func (v *Validator) describe(fe validator.FieldError) (string, string) {
	switch fe.Field() {
	case "customerPhone":
		if fe.Tag() == "required" {
			return "too_small", "Phone number is required"
		}
		return "invalid_string", "Please enter a valid phone number"
	case "paymentMethod":
		names := make([]string, 0, len(v.methods))
		for _, m := range v.methods {
			names = append(names, string(m))
		}
		return "invalid_enum_value", "Invalid payment method. Expected " + strings.Join(names, " | ")
	case "items":
		return "too_small", "Cart must have at least one item"
	case "product_id":
		return "too_small", "Product id is required"
	case "name":
		return "too_small", "Product name is required"
	case "price":
		if fe.Tag() == "lte" {
			return "too_big", "Price must be at most " + maxAmount.StringFixed(2)
		}
		return "too_small", "Price must not be negative"
	case "quantity":
		if fe.Tag() == "max" {
			return "too_big", "Quantity must be at most 99"
		}
		return "too_small", "Quantity must be at least 1"
	}
	return fe.Tag(), fe.Error()
}

type issueCollector struct {
	issues []Issue
	seen   []string
}

func (c *issueCollector) add(code, field, msg string) {
	c.issues = append(c.issues, Issue{Code: code, Path: pathOf(field), Field: field, Message: msg})
	c.seen = append(c.seen, field)
}

// reported is true when field or one of its parents already has an issue.
func (c *issueCollector) reported(field string) bool {
	for _, s := range c.seen {
		if field == s || strings.HasPrefix(field, s+".") || strings.HasPrefix(field, s+"[") {
			return true
		}
	}
	return false
}

func (c *issueCollector) err() error {
	return &ValidationError{Issues: c.issues}
}

func (c *issueCollector) stringField(obj map[string]json.RawMessage, key, missing string) (string, bool) {
	return c.stringAt(obj, key, key, missing)
}

func (c *issueCollector) stringAt(obj map[string]json.RawMessage, key, field, missing string) (string, bool) {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		c.add("invalid_type", field, missing)
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.add("invalid_type", field, "Expected string, received "+kindOf(raw))
		return "", false
	}
	return s, true
}

func (c *issueCollector) items(fields map[string]json.RawMessage) []itemRequest {
	raw, ok := fields["items"]
	if !ok || kindOf(raw) == "null" {
		c.add("invalid_type", "items", "Cart must have at least one item")
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		c.add("invalid_type", "items", "Expected array, received "+kindOf(raw))
		return nil
	}

	out := make([]itemRequest, len(elems))
	for i, elem := range elems {
		prefix := "items[" + strconv.Itoa(i) + "]"
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			c.add("invalid_type", prefix, "Expected object, received "+kindOf(elem))
			continue
		}
		out[i].ProductID, _ = c.stringAt(obj, "product_id", prefix+".product_id", "Product id is required")
		out[i].Name, _ = c.stringAt(obj, "name", prefix+".name", "Product name is required")
		if d, ok := c.numberAt(obj, "price", prefix+".price"); ok {
			out[i].Price = d
		}
		if d, ok := c.numberAt(obj, "quantity", prefix+".quantity"); ok {
			if !d.IsInteger() {
				c.add("invalid_type", prefix+".quantity", "Expected integer, received float")
			} else if d.GreaterThan(decimal.NewFromInt(domain.MaxItemQuantity)) {
				// range is checked before int conversion, which wraps past int64
				out[i].Quantity = domain.MaxItemQuantity + 1
			} else if d.LessThan(decimal.NewFromInt(domain.MinItemQuantity)) {
				out[i].Quantity = domain.MinItemQuantity - 1
			} else {
				out[i].Quantity = int(d.IntPart())
			}
		}
		img, ok := obj["image_url"]
		switch {
		case !ok:
			c.add("invalid_type", prefix+".image_url", "Image url is required (string or null)")
		case kindOf(img) == "null":
		default:
			var s string
			if err := json.Unmarshal(img, &s); err != nil {
				c.add("invalid_type", prefix+".image_url", "Expected string, received "+kindOf(img))
			} else {
				out[i].ImageURL = &s
			}
		}
	}
	return out
}

func (c *issueCollector) numberAt(obj map[string]json.RawMessage, key, field string) (decimal.Decimal, bool) {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		c.add("invalid_type", field, "Required")
		return decimal.Zero, false
	}
	if kindOf(raw) != "number" {
		c.add("invalid_type", field, "Expected number, received "+kindOf(raw))
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil {
		c.add("invalid_type", field, "Expected number")
		return decimal.Zero, false
	}
	return d, true
}

func kindOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "undefined"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}

// pathOf splits "items[0].quantity" into ["items", 0, "quantity"].
func pathOf(field string) []any {
	path := []any{}
	if field == "" {
		return path
	}
	for _, part := range strings.Split(field, ".") {
		name, rest, hasIndex := strings.Cut(part, "[")
		if name != "" {
			path = append(path, name)
		}
		for hasIndex {
			var idx string
			idx, rest, _ = strings.Cut(rest, "]")
			if n, err := strconv.Atoi(idx); err == nil {
				path = append(path, n)
			}
			_, rest, hasIndex = strings.Cut(rest, "[")
		}
	}
	return path
}

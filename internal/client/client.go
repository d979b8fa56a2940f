// Package client talks to the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/format"
	ordersvc "nixtia-store/internal/service/order"
)

type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: want scheme and host", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: u, HTTP: httpClient}, nil
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Details []ordersvc.Issue
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("api status %d: %s (%s)", e.Status, e.Message, strings.Join(fields, "; "))
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID                  string                      `json:"id"`
	OrderNumber         string                      `json:"orderNumber"`
	CustomerPhone       string                      `json:"customerPhone"`
	PaymentMethod       domain.PaymentMethod        `json:"paymentMethod"`
	Total               decimal.Decimal             `json:"total"`
	PaymentStatus       domain.PaymentStatus        `json:"paymentStatus"`
	OrderStatus         domain.OrderStatus          `json:"orderStatus"`
	CreatedAt           time.Time                   `json:"createdAt"`
	UpdatedAt           time.Time                   `json:"updatedAt"`
	Items               []OrderItem                 `json:"items"`
	PaymentInstructions *format.PaymentInstructions `json:"paymentInstructions"`
}

type CheckoutRequest struct {
	CustomerPhone  string
	PaymentMethod  domain.PaymentMethod
	Items          []domain.CartItem
	IdempotencyKey string
}

type CheckoutResult struct {
	Order    Order
	Replayed bool
}

type checkoutItem struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	ImageURL  *string     `json:"image_url"`
}

type checkoutBody struct {
	CustomerPhone string               `json:"customerPhone"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Items         []checkoutItem       `json:"items"`
}

type apiResponse struct {
	Success  bool             `json:"success"`
	Replayed bool             `json:"replayed"`
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	Details  []ordersvc.Issue `json:"details"`
	Order    Order            `json:"order"`
	Products []Product        `json:"products"`
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp apiResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Checkout submits items as a new order. Prices go out as JSON numbers.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	body := checkoutBody{
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]checkoutItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, checkoutItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     json.Number(it.Price.String()),
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout: %w", err)
	}

	headers := http.Header{}
	if req.IdempotencyKey != "" {
		headers.Set("Idempotency-Key", req.IdempotencyKey)
	}
	var resp apiResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", bytes.NewReader(raw), headers, &resp); err != nil {
		return nil, err
	}
	return &CheckoutResult{Order: resp.Order, Replayed: resp.Replayed}, nil
}

// GetOrder fetches an order for the confirmation screen. Any 404 comes back
// as domain.ErrNotFound.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var resp apiResponse
	err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers http.Header, out *apiResponse) error {
	u := c.BaseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil && res.StatusCode < 300 {
		return fmt.Errorf("decode response: %w", err)
	}
	if res.StatusCode >= 300 {
		msg := out.Error
		if out.Message != "" {
			msg += ": " + out.Message
		}
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: msg, Details: out.Details}
	}
	return nil
}

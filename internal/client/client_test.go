package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/httpserver"
	orderrepo "nixtia-store/internal/repository/order"
	productrepo "nixtia-store/internal/repository/product"
	"nixtia-store/internal/seed"
	ordersvc "nixtia-store/internal/service/order"
	productsvc "nixtia-store/internal/service/product"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := productrepo.NewMemory()
	require.NoError(t, seed.Apply(context.Background(), products, nil))
	srv, err := httpserver.New(":0", nil, httpserver.Deps{
		OrderSvc:   ordersvc.New(orderrepo.NewMemory(), ordersvc.Options{}),
		ProductSvc: productsvc.New(products, nil),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, ts.Client())
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("localhost:8080", nil)
	assert.Error(t, err)
	_, err = New("://bad", nil)
	assert.Error(t, err)
}

func TestCheckoutAndGetOrder(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 10)

	items := []domain.CartItem{
		{ProductID: products[0].ID, Name: products[0].Name, Price: products[0].Price, Quantity: 2},
		{ProductID: "x", Name: "Harina", Price: decimal.RequireFromString("120.50"), Quantity: 1},
	}
	res, err := c.Checkout(ctx, CheckoutRequest{
		CustomerPhone:  "+5215512345678",
		PaymentMethod:  domain.PaymentBankTransfer,
		Items:          items,
		IdempotencyKey: "cli-1",
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	want := domain.ItemsTotal(items)
	assert.True(t, want.Equal(res.Order.Total), "total %s != %s", res.Order.Total, want)

	again, err := c.Checkout(ctx, CheckoutRequest{
		CustomerPhone:  "+5215512345678",
		PaymentMethod:  domain.PaymentBankTransfer,
		Items:          items,
		IdempotencyKey: "cli-1",
	})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, res.Order.ID, again.Order.ID)

	order, err := c.GetOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.OrderNumber, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "120.50", order.Items[1].Subtotal.StringFixed(2))
	require.NotNil(t, order.PaymentInstructions)
	require.NotNil(t, order.PaymentInstructions.Bank)
	assert.Equal(t, order.OrderNumber, order.PaymentInstructions.Bank.Reference)
}

func TestCheckout_ValidationError(t *testing.T) {
	c := newTestAPI(t)

	_, err := c.Checkout(context.Background(), CheckoutRequest{CustomerPhone: "55", PaymentMethod: domain.PaymentCashOnDelivery})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	fields := map[string]bool{}
	for _, d := range apiErr.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["customerPhone"])
	assert.True(t, fields["items"])
}

func TestGetOrder_NotFound(t *testing.T) {
	c := newTestAPI(t)

	_, err := c.GetOrder(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

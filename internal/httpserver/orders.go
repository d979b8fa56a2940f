package httpserver

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"nixtia-store/internal/metrics"
	orderrepo "nixtia-store/internal/repository/order"
	ordersvc "nixtia-store/internal/service/order"
)

const maxCheckoutBody = 1 << 20

type orderHandlers struct {
	svc     OrderService
	metrics *metrics.ServerMetrics
	logger  *log.Logger
}

func (h *orderHandlers) create(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCheckoutBody))
	if err != nil {
		h.logger.Printf("orders: read body error=%v", err)
		h.failed(metrics.StageValidation)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": []ordersvc.Issue{{Code: "invalid_body", Path: []any{}, Message: "Request body could not be read"}},
		})
		return
	}

	res, err := h.svc.Create(c.Request.Context(), ordersvc.CreateRequest{
		Body:           body,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		CorrelationID:  correlationID(c),
	})
	if err != nil {
		var verr *ordersvc.ValidationError
		if errors.As(err, &verr) {
			h.failed(metrics.StageValidation)
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Validation failed", "details": verr.Issues})
			return
		}
		h.logger.Printf("orders: create correlation_id=%s error=%v", correlationID(c), err)
		h.failed(metrics.StageStorage)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error",
			"message": "Failed to create order. Please try again.",
		})
		return
	}

	if res.Replayed {
		c.JSON(http.StatusOK, gin.H{"success": true, "replayed": true, "order": toOrderSummary(*res.Order)})
		return
	}
	if h.metrics != nil {
		h.metrics.OrderCreated(string(res.Order.PaymentMethod))
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": toOrderSummary(*res.Order)})
}

// get answers every failed lookup with the same 404; the cause is only logged.
func (h *orderHandlers) get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": toOrderDetail(*o)})
}

func (h *orderHandlers) list(c *gin.Context) {
	params := orderrepo.ListParams{
		SortBy:    orderrepo.SortField(c.DefaultQuery("sort", string(orderrepo.SortByCreatedAt))),
		Ascending: strings.EqualFold(c.Query("dir"), "asc"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	}

	res, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Printf("orders: admin list error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
		return
	}

	orders := make([]adminOrder, 0, len(res.Orders))
	for _, o := range res.Orders {
		orders = append(orders, toAdminOrder(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   res.Total,
		"limit":   res.Limit,
		"offset":  res.Offset,
		"orders":  orders,
	})
}

func (h *orderHandlers) failed(stage string) {
	if h.metrics != nil {
		h.metrics.OrderFailed(stage)
	}
}

// queryInt reads a non-negative integer parameter; anything else reads as 0
// and falls back to the service defaults.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/metrics"
	orderrepo "nixtia-store/internal/repository/order"
	ordersvc "nixtia-store/internal/service/order"
)

const correlationHeader = "X-Correlation-ID"

type OrderService interface {
	Create(ctx context.Context, req ordersvc.CreateRequest) (*ordersvc.CreateResult, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, params orderrepo.ListParams) (*ordersvc.ListResult, error)
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Pinger reports whether the order store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	OrderSvc   OrderService
	ProductSvc ProductService
	Store      Pinger
	Metrics    *metrics.ServerMetrics
	// AdminSecret signs admin tokens. Admin routes are off when empty.
	AdminSecret      string
	CORSAllowOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.OrderSvc == nil {
		return nil, errors.New("order service is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(corsMiddleware(deps.CORSAllowOrigins))
	router.Use(correlationMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &orderHandlers{svc: deps.OrderSvc, metrics: deps.Metrics, logger: logger}
	api := router.Group("/api")
	api.POST("/orders", h.create)
	api.GET("/orders/:id", h.get)
	if deps.ProductSvc != nil {
		api.GET("/products", listProductsHandler(deps.ProductSvc, logger))
	}

	if deps.AdminSecret != "" {
		admin := api.Group("/admin", adminAuthMiddleware(deps.AdminSecret, logger))
		admin.GET("/orders", h.list)
	} else {
		logger.Println("admin routes disabled: ADMIN_JWT_SECRET not set")
	}

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", correlationHeader},
		ExposeHeaders: []string{correlationHeader},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// correlationMiddleware propagates X-Correlation-ID, minting one when absent.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationHeader, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func correlationID(c *gin.Context) string {
	return c.GetString(correlationHeader)
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"nixtia-store/internal/config"
	"nixtia-store/internal/db"
	"nixtia-store/internal/events"
	"nixtia-store/internal/httpserver"
	"nixtia-store/internal/metrics"
	orderrepo "nixtia-store/internal/repository/order"
	productrepo "nixtia-store/internal/repository/product"
	"nixtia-store/internal/seed"
	ordersvc "nixtia-store/internal/service/order"
	productsvc "nixtia-store/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var (
		orderRepo   orderrepo.Repository
		productRepo productrepo.Repository
	)
	switch cfg.OrderStore {
	case config.StoreMemory:
		orderRepo = orderrepo.NewMemory()
		productRepo = productrepo.NewMemory()
		if err := seed.Apply(ctx, productRepo, logger); err != nil {
			logger.Fatalf("seed memory catalog: %v", err)
		}
	case config.StorePostgres, config.StoreGorm:
		dbpool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()

		productRepo = productrepo.NewPostgres(dbpool, logger)
		if cfg.OrderStore == config.StoreGorm {
			gormDB, err := db.OpenGorm(dbpool, logger)
			if err != nil {
				logger.Fatalf("open gorm: %v", err)
			}
			orderRepo = orderrepo.NewGorm(gormDB, logger)
		} else {
			orderRepo = orderrepo.NewPostgres(dbpool, logger)
		}
	default:
		logger.Fatalf("unknown ORDER_STORE %q (want postgres, gorm or memory)", cfg.OrderStore)
	}
	logger.Printf("order store: %s", cfg.OrderStore)

	var publisher ordersvc.EventPublisher
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Printf("rabbitmq unavailable, order events disabled: %v", err)
		} else {
			defer conn.Close()
			pub, err := events.NewPublisher(conn)
			if err != nil {
				logger.Printf("init event publisher, order events disabled: %v", err)
			} else {
				defer pub.Close()
				publisher = pub
				logger.Printf("publishing order events to exchange %s", events.EventsExchange)
			}
		}
	}

	orderService := ordersvc.New(orderRepo, ordersvc.Options{
		Numbers:      ordersvc.Numberer{Prefix: cfg.OrderNumberPrefix},
		AllowStripe:  cfg.EnableStripe,
		WriteTimeout: cfg.OrderWriteTimeout,
		Publisher:    publisher,
		Logger:       logger,
	})
	productService := productsvc.New(productRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		OrderSvc:         orderService,
		ProductSvc:       productService,
		Store:            orderRepo,
		Metrics:          metrics.NewServerMetrics(),
		AdminSecret:      cfg.AdminJWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"nixtia-store/internal/cart"
	"nixtia-store/internal/client"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/shop"
)

const usage = `usage: shop [flags] <command> [args]

commands:
  products                         list the catalog
  add <product> [qty]              add a product by id or name
  remove <product>                 remove a cart line
  set <product> <qty>              change a line quantity (1-99)
  show                             print the cart
  clear                            empty the cart
  checkout -phone P -method M      place the cart as an order
  order <id>                       print an order confirmation

flags:
`

func main() {
	var (
		apiURL  string
		cartDir string
	)
	defaultDir := filepath.Join(os.TempDir(), "nixtia-shop")
	if dir, err := os.UserConfigDir(); err == nil {
		defaultDir = filepath.Join(dir, "nixtia-shop")
	}
	flag.StringVar(&apiURL, "api", envOrDefault("SHOP_API_URL", "http://localhost:8080"), "Storefront API base URL")
	flag.StringVar(&cartDir, "cart-dir", envOrDefault("SHOP_CART_DIR", defaultDir), "Directory holding the saved cart")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.New(os.Stderr, "[shop] ", log.LstdFlags|log.LUTC)
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	store, err := cart.NewFileStore(cartDir)
	if err != nil {
		logger.Fatalf("open cart store: %v", err)
	}
	c, err := cart.Load(store, logger)
	if err != nil {
		logger.Fatalf("load cart: %v", err)
	}
	api, err := client.New(apiURL, nil)
	if err != nil {
		logger.Fatalf("api client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, shop.New(c, api, os.Stdout), args); err != nil {
		logger.Printf("%s: %v", args[0], err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, s *shop.Shop, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "products":
		return s.Products(ctx)
	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("want: add <product> [qty]")
		}
		qty := 1
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", rest[1])
			}
			qty = n
		}
		return s.Add(ctx, rest[0], qty)
	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("want: remove <product>")
		}
		return s.Remove(rest[0])
	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("want: set <product> <qty>")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", rest[1])
		}
		return s.Set(rest[0], n)
	case "show":
		return s.Show()
	case "clear":
		return s.Clear()
	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
		phone := fs.String("phone", "", "Phone in E.164 format, e.g. +5215512345678")
		method := fs.String("method", string(domain.PaymentCashOnDelivery), "BANK_TRANSFER, CASH_ON_DELIVERY or CARD_ON_DELIVERY")
		key := fs.String("idempotency-key", "", "Reuse to retry a checkout safely")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		_, err := s.Checkout(ctx, *phone, domain.PaymentMethod(strings.ToUpper(*method)), *key)
		return err
	case "order":
		if len(rest) != 1 {
			return fmt.Errorf("want: order <id>")
		}
		return s.Order(ctx, rest[0])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

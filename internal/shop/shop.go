// Package shop drives a persisted cart against the storefront API.
package shop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"nixtia-store/internal/cart"
	"nixtia-store/internal/client"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/format"
)

var ErrEmptyCart = errors.New("cart is empty")

type Shop struct {
	cart *cart.Cart
	api  *client.Client
	out  io.Writer
}

func New(c *cart.Cart, api *client.Client, out io.Writer) *Shop {
	return &Shop{cart: c, api: api, out: out}
}

func (s *Shop) Products(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, format.Price(p.Price))
	}
	return tw.Flush()
}

// Add puts a catalog product in the cart. ref is a product id or its name.
func (s *Shop) Add(ctx context.Context, ref string, quantity int) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return err
	}
	var found *client.Product
	for i := range products {
		if products[i].ID == ref || strings.EqualFold(products[i].Name, ref) {
			found = &products[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("unknown product %q", ref)
	}

	s.cart.Add(domain.CartItem{
		ProductID: found.ID,
		Name:      found.Name,
		Price:     found.Price,
		Quantity:  quantity,
		ImageURL:  found.ImageURL,
	})
	if err := s.cart.Save(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added %s. Cart has %d item(s).\n", found.Name, s.cart.TotalItems())
	return nil
}

func (s *Shop) Remove(ref string) error {
	item, ok := s.find(ref)
	if !ok {
		return fmt.Errorf("%q is not in the cart", ref)
	}
	s.cart.Remove(item.ProductID)
	if err := s.cart.Save(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Removed %s.\n", item.Name)
	return nil
}

// Set changes the quantity of a cart line, clamped to the allowed range.
func (s *Shop) Set(ref string, quantity int) error {
	item, ok := s.find(ref)
	if !ok {
		return fmt.Errorf("%q is not in the cart", ref)
	}
	s.cart.UpdateQuantity(item.ProductID, quantity)
	if err := s.cart.Save(); err != nil {
		return err
	}
	return s.Show()
}

func (s *Shop) Show() error {
	if s.cart.IsEmpty() {
		fmt.Fprintln(s.out, "Your cart is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range s.cart.Items() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Name, it.Quantity, format.Price(it.Price), format.Price(it.Subtotal()))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\t%s\n", s.cart.TotalItems(), format.Price(s.cart.TotalAmount()))
	return tw.Flush()
}

func (s *Shop) Clear() error {
	s.cart.Clear()
	if err := s.cart.Save(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Cart cleared.")
	return nil
}

// Checkout places the cart as an order and empties the cart once the order
// is confirmed. On failure the cart is left untouched.
func (s *Shop) Checkout(ctx context.Context, phone string, method domain.PaymentMethod, idempotencyKey string) (*client.Order, error) {
	if s.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	res, err := s.api.Checkout(ctx, client.CheckoutRequest{
		CustomerPhone:  phone,
		PaymentMethod:  method,
		Items:          s.cart.Items(),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	s.cart.Clear()
	if err := s.cart.Save(); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Order %s confirmed. Total %s.\n", res.Order.OrderNumber, format.Price(res.Order.Total))
	if err := s.Order(ctx, res.Order.ID); err != nil {
		fmt.Fprintf(s.out, "Could not load order details: %v\n", err)
	}
	return &res.Order, nil
}

// Order prints an order confirmation with its payment instructions.
func (s *Shop) Order(ctx context.Context, id string) error {
	o, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Order %s (%s)\n", o.OrderNumber, o.ID)
	fmt.Fprintf(s.out, "Phone: %s\n", format.Phone(o.CustomerPhone))
	fmt.Fprintf(s.out, "Payment: %s, %s\n", format.PaymentMethod(o.PaymentMethod), format.PaymentStatus(o.PaymentStatus))
	fmt.Fprintf(s.out, "Status: %s\n", format.OrderStatus(o.OrderStatus))
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %s\tx%d\t%s\n", it.Name, it.Quantity, format.Price(it.Subtotal))
	}
	fmt.Fprintf(tw, "  Total\t\t%s\n", format.Price(o.Total))
	if err := tw.Flush(); err != nil {
		return err
	}

	if ins := o.PaymentInstructions; ins != nil {
		fmt.Fprintf(s.out, "\n%s\n%s\n", ins.Title, ins.Body)
		if b := ins.Bank; b != nil {
			fmt.Fprintf(s.out, "  Bank: %s\n  Account: %s\n  CLABE: %s\n  Beneficiary: %s\n  Reference: %s\n",
				b.BankName, b.AccountNumber, b.CLABE, b.Beneficiary, b.Reference)
		}
		fmt.Fprintln(s.out, ins.Note)
	}
	return nil
}

func (s *Shop) find(ref string) (domain.CartItem, bool) {
	for _, it := range s.cart.Items() {
		if it.ProductID == ref || strings.EqualFold(it.Name, ref) {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

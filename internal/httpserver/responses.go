package httpserver

import (
	"time"

	"nixtia-store/internal/domain"
	"nixtia-store/internal/format"
)

type orderSummary struct {
	ID            string               `json:"id"`
	OrderNumber   string               `json:"orderNumber"`
	CustomerPhone string               `json:"customerPhone"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Total         string               `json:"total"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	OrderStatus   domain.OrderStatus   `json:"orderStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
}

type orderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     string  `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"image_url"`
	Subtotal  string  `json:"subtotal"`
}

type orderDetail struct {
	orderSummary
	Items               []orderItem                 `json:"items"`
	UpdatedAt           time.Time                   `json:"updatedAt"`
	PaymentInstructions *format.PaymentInstructions `json:"paymentInstructions,omitempty"`
}

type adminOrder struct {
	orderSummary
	CustomerPhoneDisplay string `json:"customerPhoneDisplay"`
	TotalDisplay         string `json:"totalDisplay"`
	PaymentMethodLabel   string `json:"paymentMethodLabel"`
	PaymentStatusLabel   string `json:"paymentStatusLabel"`
	OrderStatusLabel     string `json:"orderStatusLabel"`
	ItemCount            int    `json:"itemCount"`
}

type productResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	PriceDisplay string  `json:"priceDisplay"`
	ImageURL     *string `json:"image_url"`
}

func toOrderSummary(o domain.Order) orderSummary {
	return orderSummary{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerPhone: o.CustomerPhone,
		PaymentMethod: o.PaymentMethod,
		Total:         o.TotalAmount.StringFixed(2),
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		CreatedAt:     o.CreatedAt,
	}
}

func toOrderDetail(o domain.Order) orderDetail {
	items := make([]orderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	d := orderDetail{
		orderSummary: toOrderSummary(o),
		Items:        items,
		UpdatedAt:    o.UpdatedAt,
	}
	if ins, ok := format.Instructions(o.PaymentMethod, o.OrderNumber); ok {
		d.PaymentInstructions = &ins
	}
	return d
}

func toAdminOrder(o domain.Order) adminOrder {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return adminOrder{
		orderSummary:         toOrderSummary(o),
		CustomerPhoneDisplay: format.Phone(o.CustomerPhone),
		TotalDisplay:         format.Price(o.TotalAmount),
		PaymentMethodLabel:   format.PaymentMethod(o.PaymentMethod),
		PaymentStatusLabel:   format.PaymentStatus(o.PaymentStatus),
		OrderStatusLabel:     format.OrderStatus(o.OrderStatus),
		ItemCount:            count,
	}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		PriceDisplay: format.Price(p.Price),
		ImageURL:     p.ImageURL,
	}
}

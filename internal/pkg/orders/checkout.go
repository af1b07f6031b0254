package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
)

// PreferenceCreator is the outbound gateway surface checkout depends on.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, pref mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error)
}

// Service owns checkout and the order status lifecycle.
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	gateway  PreferenceCreator

	notificationURL string
	backURLBase     string
}

// NewService creates an order service from injected repositories and a
// gateway client. notificationURL and backURLBase configure the URLs
// attached to checkout preferences.
func NewService(orders repository.OrderRepository, products repository.ProductRepository, gateway PreferenceCreator, notificationURL, backURLBase string) *Service {
	return &Service{
		orders:          orders,
		products:        products,
		gateway:         gateway,
		notificationURL: notificationURL,
		backURLBase:     strings.TrimRight(backURLBase, "/"),
	}
}

// CheckoutItem is one requested line in a checkout submission.
type CheckoutItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput is a checkout submission.
type CheckoutInput struct {
	UserID         uint
	CustomerName   string
	CustomerEmail  string
	Items          []CheckoutItem
	DeliveryMethod string
	Freight        float64

	ShippingStreet  string
	ShippingCity    string
	ShippingState   string
	ShippingZipCode string
	ShippingCountry string
	ShippingNotes   string
}

// StockError reports which product blocked a checkout.
type StockError struct {
	ProductID   uint
	ProductName string
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (requested %d)", e.ProductName, e.Requested)
}

// CheckoutResult is returned on successful order creation.
type CheckoutResult struct {
	Order       *models.Order
	CheckoutURL string
}

// Checkout turns a cart into an order. Stock is reserved per item with
// the repository's atomic conditional decrement; a failure midway
// restocks everything already taken, so from the caller's perspective the
// whole submission is all-or-nothing. Prices and names are snapshotted
// into the line items so later catalog edits never change this order.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("checkout requires at least one item")
	}
	if in.DeliveryMethod != models.DeliveryMethodPickup && in.DeliveryMethod != models.DeliveryMethodDelivery {
		return nil, fmt.Errorf("unknown delivery method %q", in.DeliveryMethod)
	}

	type reserved struct {
		product  *models.Product
		quantity int
	}
	var taken []reserved
	undo := func() {
		for _, r := range taken {
			if err := s.products.IncrementStock(r.product.ID, r.quantity); err != nil {
				log.Printf("checkout compensation failed for product %d: %v", r.product.ID, err)
			}
		}
	}

	var items []models.OrderItem
	itemsTotal := 0.0
	for _, line := range in.Items {
		product, err := s.products.GetByID(line.ProductID)
		if err != nil {
			undo()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d not found", line.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			undo()
			return nil, fmt.Errorf("product %q is no longer available", product.Name)
		}

		if err := s.products.DecrementStock(product.ID, line.Quantity); err != nil {
			undo()
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, &StockError{ProductID: product.ID, ProductName: product.Name, Requested: line.Quantity}
			}
			return nil, err
		}
		taken = append(taken, reserved{product: product, quantity: line.Quantity})

		subtotal := models.RoundMoney(float64(line.Quantity) * product.Price)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		itemsTotal += subtotal
	}

	freight := models.RoundMoney(in.Freight)
	if in.DeliveryMethod == models.DeliveryMethodPickup {
		freight = 0
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          in.UserID,
		Status:          models.OrderStatusAwaitingPayment,
		DeliveryMethod:  in.DeliveryMethod,
		ShippingStreet:  strings.TrimSpace(in.ShippingStreet),
		ShippingCity:    strings.TrimSpace(in.ShippingCity),
		ShippingState:   strings.TrimSpace(in.ShippingState),
		ShippingZipCode: strings.TrimSpace(in.ShippingZipCode),
		ShippingCountry: strings.TrimSpace(in.ShippingCountry),
		ShippingNotes:   strings.TrimSpace(in.ShippingNotes),
		ItemsTotal:      models.RoundMoney(itemsTotal),
		Freight:         freight,
		GrandTotal:      models.RoundMoney(itemsTotal + freight),
		Items:           items,
	}
	if err := order.Validate(); err != nil {
		undo()
		return nil, err
	}

	pref, err := s.gateway.CreatePreference(ctx, s.preferenceFor(order, in))
	if err != nil {
		undo()
		return nil, fmt.Errorf("create checkout preference: %w", err)
	}
	order.PreferenceID = pref.ID
	order.CheckoutURL = pref.InitPoint

	if err := s.orders.Create(order); err != nil {
		undo()
		return nil, err
	}

	return &CheckoutResult{Order: order, CheckoutURL: pref.InitPoint}, nil
}

func (s *Service) preferenceFor(order *models.Order, in CheckoutInput) mercadopago.PreferenceRequest {
	items := make([]mercadopago.PreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, mercadopago.PreferenceItem{
			ID:        fmt.Sprintf("%d", item.ProductID),
			Title:     item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if order.Freight > 0 {
		items = append(items, mercadopago.PreferenceItem{
			Title:     "Freight",
			Quantity:  1,
			UnitPrice: order.Freight,
		})
	}

	return mercadopago.PreferenceRequest{
		Items: items,
		Payer: mercadopago.PreferencePayer{
			Name:  strings.TrimSpace(in.CustomerName),
			Email: strings.TrimSpace(in.CustomerEmail),
		},
		BackURLs: mercadopago.PreferenceBackURLs{
			Success: s.backURLBase + "/checkout/success",
			Pending: s.backURLBase + "/checkout/pending",
			Failure: s.backURLBase + "/checkout/failure",
		},
		AutoReturn:        "approved",
		NotificationURL:   s.notificationURL,
		ExternalReference: order.OrderNumber,
	}
}

// newOrderNumber builds the human-facing unique order number.
func newOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "VA-" + raw[:12]
}

package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Order statuses. Transitions between them are governed by the lifecycle
// rules in internal/pkg/orders; nothing else may write Order.Status.
const (
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPaymentApproved = "payment_approved"
	OrderStatusPreparing       = "preparing"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
)

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// orderStatuses is the fixed allowed-status set. Any status write is
// checked against it before persistence.
var orderStatuses = map[string]bool{
	OrderStatusAwaitingPayment: true,
	OrderStatusPaymentApproved: true,
	OrderStatusPreparing:       true,
	OrderStatusShipped:         true,
	OrderStatusDelivered:       true,
	OrderStatusCancelled:       true,
}

// IsValidOrderStatus reports membership in the allowed-status set.
func IsValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

// Order is a customer purchase. Line items and the shipping address are
// snapshotted copies: later catalog or account changes never alter a
// historical order.
type Order struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrderNumber    string `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID         uint   `gorm:"not null;index" json:"user_id"`
	User           User   `gorm:"foreignKey:UserID" json:"-"`
	Status         string `gorm:"type:varchar(30);not null;default:'awaiting_payment';index" json:"status"`
	DeliveryMethod string `gorm:"type:varchar(20);not null" json:"delivery_method" validate:"oneof=pickup delivery"`

	// Address snapshot, required iff DeliveryMethod == "delivery".
	ShippingStreet   string `gorm:"type:varchar(200)" json:"shipping_street"`
	ShippingCity     string `gorm:"type:varchar(100)" json:"shipping_city"`
	ShippingState    string `gorm:"type:varchar(50)" json:"shipping_state"`
	ShippingZipCode  string `gorm:"type:varchar(20)" json:"shipping_zip_code"`
	ShippingCountry  string `gorm:"type:varchar(60)" json:"shipping_country"`
	ShippingNotes    string `gorm:"type:varchar(500)" json:"shipping_notes"`

	ItemsTotal float64 `gorm:"type:decimal(10,2);not null" json:"items_total"`
	Freight    float64 `gorm:"type:decimal(10,2);not null;default:0" json:"freight"`
	GrandTotal float64 `gorm:"type:decimal(10,2);not null" json:"grand_total"`

	// Payment sub-record, filled in by the reconciler.
	PaymentMethod string  `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus string  `gorm:"type:varchar(30)" json:"payment_status"`
	PaymentAmount float64 `gorm:"type:decimal(10,2)" json:"payment_amount"`

	// Gateway preference created at checkout. The order number doubles as
	// the external reference sent to the provider.
	PreferenceID string `gorm:"type:varchar(100);index" json:"preference_id"`
	CheckoutURL  string `gorm:"type:varchar(500)" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	RegisteredAt time.Time  `gorm:"autoCreateTime" json:"registered_at"`
	ShippedAt    *time.Time `gorm:"type:timestamp;default:null" json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time `gorm:"type:timestamp;default:null" json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem snapshots product name and unit price at order time.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Name      string  `gorm:"type:varchar(200);not null" json:"name"`
	Quantity  int     `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Order) Validate() error {
	v := validator.New()
	if err := v.Struct(o); err != nil {
		return err
	}
	if !IsValidOrderStatus(o.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, o.Status)
	}
	if o.DeliveryMethod == DeliveryMethodDelivery && (o.ShippingStreet == "" || o.ShippingCity == "" || o.ShippingZipCode == "") {
		return errors.New("shipping address is required for delivery orders")
	}
	return o.ValidateTotals()
}

// ValidateTotals enforces the order money invariants: the grand total is
// the items total plus freight, and the items total is the sum of the
// line item subtotals.
func (o *Order) ValidateTotals() error {
	sum := 0.0
	for _, item := range o.Items {
		if !moneyEqual(item.Subtotal, RoundMoney(float64(item.Quantity)*item.UnitPrice)) {
			return fmt.Errorf("item %q subtotal %.2f does not match %d x %.2f", item.Name, item.Subtotal, item.Quantity, item.UnitPrice)
		}
		sum += item.Subtotal
	}
	if !moneyEqual(o.ItemsTotal, RoundMoney(sum)) {
		return fmt.Errorf("items total %.2f does not match line item sum %.2f", o.ItemsTotal, sum)
	}
	if !moneyEqual(o.GrandTotal, RoundMoney(o.ItemsTotal+o.Freight)) {
		return fmt.Errorf("grand total %.2f does not match items total %.2f + freight %.2f", o.GrandTotal, o.ItemsTotal, o.Freight)
	}
	return nil
}

// IsTerminal reports whether the order reached a final status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// IsPaid reports whether the order progressed past payment approval.
func (o *Order) IsPaid() bool {
	switch o.Status {
	case OrderStatusPaymentApproved, OrderStatusPreparing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// RoundMoney rounds to two decimal places, the storage precision of all
// monetary columns.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func moneyEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

package orders

import (
	"fmt"
	"log"
	"time"

	"github.com/vivaarte/vivaarte/app/models"
)

// statusTransitions encodes the order lifecycle:
//
//	awaiting_payment -> payment_approved -> preparing -> shipped -> delivered
//
// with cancelled reachable from every non-terminal state. delivered and
// cancelled are terminal.
var statusTransitions = map[string][]string{
	models.OrderStatusAwaitingPayment: {models.OrderStatusPaymentApproved, models.OrderStatusCancelled},
	models.OrderStatusPaymentApproved: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:       {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:         {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:       {},
	models.OrderStatusCancelled:       {},
}

// CanTransition reports whether the lifecycle allows moving an order
// from one status to another. Re-entering the current status is allowed
// as a no-op so redelivered notifications stay idempotent.
func CanTransition(from, to string) bool {
	if !models.IsValidOrderStatus(from) || !models.IsValidOrderStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves an order to a new status, stamps the matching
// timestamp once, persists the order, and restocks unpaid cancellations.
func (s *Service) Transition(order *models.Order, newStatus string) error {
	if !models.IsValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: %q", models.ErrInvalidOrderStatus, newStatus)
	}
	if !CanTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: cannot move order %s from %q to %q",
			models.ErrInvalidOrderStatus, order.OrderNumber, order.Status, newStatus)
	}
	if order.Status == newStatus {
		return nil
	}

	wasPaid := order.IsPaid()
	order.Status = newStatus
	stampStatusTimestamp(order, newStatus)

	if err := s.orders.Save(order); err != nil {
		return err
	}

	// Stock was reserved at order creation. An order cancelled before
	// payment approval returns its units to the shelf; paid cancellations
	// are a refund matter, not an inventory one.
	if newStatus == models.OrderStatusCancelled && !wasPaid {
		s.restock(order)
	}
	return nil
}

// stampStatusTimestamp sets the timestamp belonging to a status exactly
// once; an already-set stamp is never overwritten.
func stampStatusTimestamp(order *models.Order, status string) {
	now := time.Now()
	switch status {
	case models.OrderStatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case models.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	case models.OrderStatusCancelled:
		if order.CancelledAt == nil {
			order.CancelledAt = &now
		}
	}
}

func (s *Service) restock(order *models.Order) {
	for _, item := range order.Items {
		if err := s.products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			// Inventory drift is recoverable by hand; the cancellation
			// itself must not fail because of it.
			log.Printf("restock failed for order %s product %d: %v", order.OrderNumber, item.ProductID, err)
		}
	}
}

// ApplyPaymentOutcome maps a reconciled payment record onto the order it
// references. Approved payments move a waiting order forward; definitive
// rejections cancel a still-unpaid order. Repeated application of the
// same record is a no-op.
func (s *Service) ApplyPaymentOutcome(record *models.PaymentRecord) (string, string, error) {
	order, err := s.orders.GetByOrderNumber(record.ExternalReference)
	if err != nil {
		return "", "", fmt.Errorf("order %q not found for payment %s: %w",
			record.ExternalReference, record.ProviderPaymentID, err)
	}

	order.PaymentMethod = record.PaymentMethod
	order.PaymentStatus = record.Status
	order.PaymentAmount = record.TransactionAmount

	switch {
	case record.IsApproved():
		if order.Status == models.OrderStatusAwaitingPayment {
			if err := s.Transition(order, models.OrderStatusPaymentApproved); err != nil {
				return order.OrderNumber, order.Status, err
			}
		} else if err := s.orders.Save(order); err != nil {
			return order.OrderNumber, order.Status, err
		}
	case record.IsFinalRejection():
		if order.Status == models.OrderStatusAwaitingPayment {
			if err := s.Transition(order, models.OrderStatusCancelled); err != nil {
				return order.OrderNumber, order.Status, err
			}
		} else if err := s.orders.Save(order); err != nil {
			return order.OrderNumber, order.Status, err
		}
	default:
		// pending / in_process / refunded: keep the payment sub-record
		// current without touching the lifecycle.
		if err := s.orders.Save(order); err != nil {
			return order.OrderNumber, order.Status, err
		}
	}

	return order.OrderNumber, order.Status, nil
}

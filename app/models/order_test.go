package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		OrderNumber:    "VA-ABC123DEF456",
		UserID:         1,
		Status:         OrderStatusAwaitingPayment,
		DeliveryMethod: DeliveryMethodPickup,
		ItemsTotal:     191.00,
		Freight:        0,
		GrandTotal:     191.00,
		Items: []OrderItem{
			{ProductID: 1, Name: "Ceramic mug", Quantity: 2, UnitPrice: 35.50, Subtotal: 71.00},
			{ProductID: 2, Name: "Woven basket", Quantity: 1, UnitPrice: 120.00, Subtotal: 120.00},
		},
	}
}

func TestOrderValidate(t *testing.T) {
	require.NoError(t, validOrder().Validate())
}

func TestOrderValidateRejectsUnknownStatus(t *testing.T) {
	order := validOrder()
	order.Status = "lost-in-transit"
	err := order.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderValidateDeliveryNeedsAddress(t *testing.T) {
	order := validOrder()
	order.DeliveryMethod = DeliveryMethodDelivery
	order.Freight = 15
	order.GrandTotal = 206.00
	require.Error(t, order.Validate())

	order.ShippingStreet = "Rua das Flores 10"
	order.ShippingCity = "Sao Paulo"
	order.ShippingZipCode = "01000-000"
	require.NoError(t, order.Validate())
}

func TestValidateTotals(t *testing.T) {
	require.NoError(t, validOrder().ValidateTotals())

	t.Run("grand total mismatch", func(t *testing.T) {
		order := validOrder()
		order.GrandTotal = 200.00
		assert.Error(t, order.ValidateTotals())
	})

	t.Run("items total mismatch", func(t *testing.T) {
		order := validOrder()
		order.ItemsTotal = 150.00
		assert.Error(t, order.ValidateTotals())
	})

	t.Run("line subtotal mismatch", func(t *testing.T) {
		order := validOrder()
		order.Items[0].Subtotal = 70.00
		assert.Error(t, order.ValidateTotals())
	})

	t.Run("cent rounding is tolerated", func(t *testing.T) {
		order := &Order{
			OrderNumber:    "VA-ABC123DEF456",
			UserID:         1,
			Status:         OrderStatusAwaitingPayment,
			DeliveryMethod: DeliveryMethodPickup,
			ItemsTotal:     0.30,
			GrandTotal:     0.30,
			Items: []OrderItem{
				{ProductID: 1, Name: "Sticker", Quantity: 3, UnitPrice: 0.10, Subtotal: 0.30},
			},
		}
		assert.NoError(t, order.ValidateTotals())
	})
}

func TestOrderIsTerminalAndIsPaid(t *testing.T) {
	order := validOrder()

	assert.False(t, order.IsTerminal())
	assert.False(t, order.IsPaid())

	order.Status = OrderStatusPaymentApproved
	assert.True(t, order.IsPaid())
	assert.False(t, order.IsTerminal())

	order.Status = OrderStatusDelivered
	assert.True(t, order.IsTerminal())
	assert.True(t, order.IsPaid())

	order.Status = OrderStatusCancelled
	assert.True(t, order.IsTerminal())
	assert.False(t, order.IsPaid())
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 10.57, RoundMoney(10.567))
	assert.Equal(t, 10.12, RoundMoney(10.123))
	assert.Equal(t, 0.0, RoundMoney(0))
	assert.Equal(t, 191.0, RoundMoney(2*35.50+120))
}

func TestPaymentRecordStatusHelpers(t *testing.T) {
	record := &PaymentRecord{Status: PaymentStatusApproved}
	assert.True(t, record.IsApproved())
	assert.False(t, record.IsFinalRejection())

	record.Status = PaymentStatusRejected
	assert.False(t, record.IsApproved())
	assert.True(t, record.IsFinalRejection())

	record.Status = PaymentStatusCancelled
	assert.True(t, record.IsFinalRejection())

	record.Status = PaymentStatusPending
	assert.False(t, record.IsApproved())
	assert.False(t, record.IsFinalRejection())
}

package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivaarte/vivaarte/app/models"
)

func newCheckoutTestService(orderRepo *fakeOrderRepo, productRepo *fakeProductRepo, gateway *fakePreferenceGateway) *Service {
	return NewService(orderRepo, productRepo, gateway, "http://localhost/webhooks/payment", "http://localhost")
}

func pickupInput(items ...CheckoutItem) CheckoutInput {
	return CheckoutInput{
		UserID:         1,
		CustomerName:   "Maria Silva",
		CustomerEmail:  "maria@example.com",
		Items:          items,
		DeliveryMethod: models.DeliveryMethodPickup,
		Freight:        15,
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	productRepo := newFakeProductRepo(
		testProduct(1, "Ceramic mug", 35.50, 10),
		testProduct(2, "Woven basket", 120, 2),
	)
	orderRepo := newFakeOrderRepo()
	gateway := &fakePreferenceGateway{}
	svc := newCheckoutTestService(orderRepo, productRepo, gateway)

	result, err := svc.Checkout(context.Background(), pickupInput(
		CheckoutItem{ProductID: 1, Quantity: 2},
		CheckoutItem{ProductID: 2, Quantity: 1},
	))
	require.NoError(t, err)

	order := result.Order
	assert.True(t, strings.HasPrefix(order.OrderNumber, "VA-"))
	assert.Equal(t, models.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, 191.0, order.ItemsTotal)
	// pickup orders never carry freight, whatever the form said
	assert.Equal(t, 0.0, order.Freight)
	assert.Equal(t, 191.0, order.GrandTotal)
	require.NoError(t, order.ValidateTotals())

	// stock reserved
	assert.Equal(t, 8, productRepo.products[1].Stock)
	assert.Equal(t, 1, productRepo.products[2].Stock)

	// preference carries the order number as external reference
	assert.Equal(t, order.OrderNumber, gateway.last.ExternalReference)
	assert.Equal(t, "https://gateway.example/checkout/pref", result.CheckoutURL)
	assert.Equal(t, order.PreferenceID, "pref-1")

	// order persisted
	stored, err := orderRepo.GetByOrderNumber(order.OrderNumber)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestCheckoutDeliveryKeepsFreight(t *testing.T) {
	productRepo := newFakeProductRepo(testProduct(1, "Ceramic mug", 35.50, 10))
	orderRepo := newFakeOrderRepo()
	svc := newCheckoutTestService(orderRepo, productRepo, &fakePreferenceGateway{})

	in := pickupInput(CheckoutItem{ProductID: 1, Quantity: 1})
	in.DeliveryMethod = models.DeliveryMethodDelivery
	in.ShippingStreet = "Rua das Flores 10"
	in.ShippingCity = "Sao Paulo"
	in.ShippingZipCode = "01000-000"

	result, err := svc.Checkout(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 15.0, result.Order.Freight)
	assert.Equal(t, 50.50, result.Order.GrandTotal)
}

func TestCheckoutDeliveryRequiresAddress(t *testing.T) {
	productRepo := newFakeProductRepo(testProduct(1, "Ceramic mug", 35.50, 10))
	orderRepo := newFakeOrderRepo()
	svc := newCheckoutTestService(orderRepo, productRepo, &fakePreferenceGateway{})

	in := pickupInput(CheckoutItem{ProductID: 1, Quantity: 1})
	in.DeliveryMethod = models.DeliveryMethodDelivery

	_, err := svc.Checkout(context.Background(), in)
	require.Error(t, err)
	// the reserved unit was returned
	assert.Equal(t, 10, productRepo.products[1].Stock)
	assert.Empty(t, orderRepo.orders)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	productRepo := newFakeProductRepo(
		testProduct(1, "Ceramic mug", 35.50, 10),
		testProduct(2, "Woven basket", 120, 1),
	)
	orderRepo := newFakeOrderRepo()
	gateway := &fakePreferenceGateway{}
	svc := newCheckoutTestService(orderRepo, productRepo, gateway)

	_, err := svc.Checkout(context.Background(), pickupInput(
		CheckoutItem{ProductID: 1, Quantity: 2},
		CheckoutItem{ProductID: 2, Quantity: 3},
	))
	require.Error(t, err)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(2), stockErr.ProductID)
	assert.Equal(t, "Woven basket", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Requested)

	// the first line's reservation was rolled back, nothing was created
	assert.Equal(t, 10, productRepo.products[1].Stock)
	assert.Equal(t, 1, productRepo.products[2].Stock)
	assert.Empty(t, orderRepo.orders)
	assert.Zero(t, gateway.calls)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	productRepo := newFakeProductRepo(testProduct(1, "Ceramic mug", 35.50, 10))
	orderRepo := newFakeOrderRepo()
	svc := newCheckoutTestService(orderRepo, productRepo, &fakePreferenceGateway{})

	_, err := svc.Checkout(context.Background(), pickupInput(CheckoutItem{ProductID: 999, Quantity: 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCheckoutInactiveProduct(t *testing.T) {
	inactive := testProduct(3, "Retired print", 60, 5)
	inactive.IsActive = false
	productRepo := newFakeProductRepo(inactive)
	orderRepo := newFakeOrderRepo()
	svc := newCheckoutTestService(orderRepo, productRepo, &fakePreferenceGateway{})

	_, err := svc.Checkout(context.Background(), pickupInput(CheckoutItem{ProductID: 3, Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, 5, productRepo.products[3].Stock)
}

func TestCheckoutGatewayFailureRestocks(t *testing.T) {
	productRepo := newFakeProductRepo(testProduct(1, "Ceramic mug", 35.50, 10))
	orderRepo := newFakeOrderRepo()
	gateway := &fakePreferenceGateway{err: errors.New("gateway timeout")}
	svc := newCheckoutTestService(orderRepo, productRepo, gateway)

	_, err := svc.Checkout(context.Background(), pickupInput(CheckoutItem{ProductID: 1, Quantity: 4}))
	require.Error(t, err)
	assert.Equal(t, 10, productRepo.products[1].Stock)
	assert.Empty(t, orderRepo.orders)
}

func TestCheckoutPersistFailureRestocks(t *testing.T) {
	productRepo := newFakeProductRepo(testProduct(1, "Ceramic mug", 35.50, 10))
	orderRepo := newFakeOrderRepo()
	orderRepo.createErr = errors.New("db down")
	svc := newCheckoutTestService(orderRepo, productRepo, &fakePreferenceGateway{})

	_, err := svc.Checkout(context.Background(), pickupInput(CheckoutItem{ProductID: 1, Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, 10, productRepo.products[1].Stock)
}

func TestCheckoutRejectsEmptyAndInvalidInput(t *testing.T) {
	svc := newCheckoutTestService(newFakeOrderRepo(), newFakeProductRepo(), &fakePreferenceGateway{})

	_, err := svc.Checkout(context.Background(), pickupInput())
	require.Error(t, err)

	in := pickupInput(CheckoutItem{ProductID: 1, Quantity: 1})
	in.DeliveryMethod = "drone"
	_, err = svc.Checkout(context.Background(), in)
	require.Error(t, err)
}

func TestNewOrderNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		number := newOrderNumber()
		require.Len(t, number, 15)
		assert.True(t, strings.HasPrefix(number, "VA-"))
		assert.Equal(t, strings.ToUpper(number), number)
		assert.False(t, seen[number], "order numbers must not repeat")
		seen[number] = true
	}
}

package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
)

// fakeRepository keeps records in memory and mimics the upsert semantics
// of the unique provider_payment_id index.
type fakeRepository struct {
	events  []*models.WebhookEvent
	records map[string]*models.PaymentRecord
	nextID  uint

	upsertErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: map[string]*models.PaymentRecord{}}
}

func (f *fakeRepository) CreateWebhookEvent(event *models.WebhookEvent) error {
	f.nextID++
	event.ID = f.nextID
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Processed = true
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetWebhookError(id uint, processingError string) error {
	for _, e := range f.events {
		if e.ID == id {
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) UpsertPaymentRecord(record *models.PaymentRecord) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	existing, ok := f.records[record.ProviderPaymentID]
	if ok {
		record.ID = existing.ID
		f.records[record.ProviderPaymentID] = record
		return false, nil
	}
	f.nextID++
	record.ID = f.nextID
	f.records[record.ProviderPaymentID] = record
	return true, nil
}

func (f *fakeRepository) GetPaymentRecordByProviderID(providerPaymentID string) (*models.PaymentRecord, error) {
	record, ok := f.records[providerPaymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRepository) ListWebhookEvents(offset, limit int) ([]models.WebhookEvent, error) {
	out := make([]models.WebhookEvent, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeRepository) CountWebhookEvents() (int64, error) {
	return int64(len(f.events)), nil
}

type fakeGateway struct {
	payments map[string]*mercadopago.Payment
	calls    int
	err      error
}

func (f *fakeGateway) GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, mercadopago.ErrPaymentNotFound
	}
	return p, nil
}

type fakeOrderSync struct {
	applied []*models.PaymentRecord
	err     error
}

func (f *fakeOrderSync) ApplyPaymentOutcome(record *models.PaymentRecord) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.applied = append(f.applied, record)
	return record.ExternalReference, models.OrderStatusPaymentApproved, nil
}

func approvedPayment(id int64, reference string) *mercadopago.Payment {
	return &mercadopago.Payment{
		ID:                id,
		Status:            "approved",
		StatusDetail:      "accredited",
		ExternalReference: reference,
		PaymentTypeID:     "credit_card",
		PaymentMethodID:   "visa",
		TransactionAmount: 120.50,
		CurrencyID:        "BRL",
	}
}

func TestRecordWebhookEventAlwaysAppends(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeGateway{}, nil)
	ctx := context.Background()

	in := WebhookEventInput{
		EventType:   "payment",
		ResourceID:  "555",
		RequestID:   "req-1",
		PayloadJSON: `{"type":"payment","data":{"id":"555"}}`,
	}

	first, err := svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)
	second, err := svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)

	// Redelivery of the same resource id creates a second audit row.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.events, 2)
}

func TestReconcileCreatesThenUpdates(t *testing.T) {
	repo := newFakeRepository()
	gateway := &fakeGateway{payments: map[string]*mercadopago.Payment{
		"555": approvedPayment(555, "VA-ABCDEF123456"),
	}}
	orderSync := &fakeOrderSync{}
	svc := NewService(repo, gateway, orderSync)
	ctx := context.Background()

	record, result, err := svc.Reconcile(ctx, "555")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "555", record.ProviderPaymentID)
	assert.Equal(t, "approved", record.Status)
	assert.Equal(t, "VA-ABCDEF123456", result.OrderNumber)

	// Same notification again: one record, an update, the order re-synced.
	record2, result2, err := svc.Reconcile(ctx, "555")
	require.NoError(t, err)
	assert.False(t, result2.Created)
	assert.Equal(t, record.ID, record2.ID)
	assert.Len(t, repo.records, 1)
	assert.Len(t, orderSync.applied, 2)
}

func TestReconcileGatewayError(t *testing.T) {
	repo := newFakeRepository()
	gateway := &fakeGateway{err: errors.New("gateway down")}
	svc := NewService(repo, gateway, &fakeOrderSync{})

	_, _, err := svc.Reconcile(context.Background(), "555")
	require.Error(t, err)
	assert.Empty(t, repo.records)
}

func TestReconcileUnknownPayment(t *testing.T) {
	repo := newFakeRepository()
	gateway := &fakeGateway{payments: map[string]*mercadopago.Payment{}}
	svc := NewService(repo, gateway, nil)

	_, _, err := svc.Reconcile(context.Background(), "404404")
	require.Error(t, err)
	assert.ErrorIs(t, err, mercadopago.ErrPaymentNotFound)
}

func TestReconcileWithoutReferenceSkipsOrderSync(t *testing.T) {
	repo := newFakeRepository()
	gateway := &fakeGateway{payments: map[string]*mercadopago.Payment{
		"777": approvedPayment(777, ""),
	}}
	orderSync := &fakeOrderSync{}
	svc := NewService(repo, gateway, orderSync)

	record, result, err := svc.Reconcile(context.Background(), "777")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Empty(t, record.ExternalReference)
	assert.Empty(t, orderSync.applied)
}

func TestReconcileOrderSyncErrorStillKeepsRecord(t *testing.T) {
	repo := newFakeRepository()
	gateway := &fakeGateway{payments: map[string]*mercadopago.Payment{
		"888": approvedPayment(888, "VA-000000000000"),
	}}
	orderSync := &fakeOrderSync{err: errors.New("order not found")}
	svc := NewService(repo, gateway, orderSync)

	record, _, err := svc.Reconcile(context.Background(), "888")
	require.Error(t, err)
	require.NotNil(t, record)
	assert.Len(t, repo.records, 1)
}

func TestMarkWebhookProcessed(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeGateway{}, nil)
	ctx := context.Background()

	event, err := svc.RecordWebhookEvent(ctx, WebhookEventInput{EventType: "payment", ResourceID: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkWebhookProcessed(ctx, event.ID, nil))
	assert.True(t, repo.events[0].Processed)
	assert.Empty(t, repo.events[0].ProcessingError)

	require.NoError(t, svc.MarkWebhookProcessed(ctx, event.ID, errors.New("boom")))
	assert.Equal(t, "boom", repo.events[0].ProcessingError)
}

func TestRecordWebhookFailureLeavesUnprocessed(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeGateway{}, nil)
	ctx := context.Background()

	event, err := svc.RecordWebhookEvent(ctx, WebhookEventInput{EventType: "payment", ResourceID: "2"})
	require.NoError(t, err)

	require.NoError(t, svc.RecordWebhookFailure(ctx, event.ID, "invalid webhook signature"))
	assert.False(t, repo.events[0].Processed)
	assert.Equal(t, "invalid webhook signature", repo.events[0].ProcessingError)
}

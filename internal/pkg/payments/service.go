package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
)

// Gateway is the outbound payment API surface the reconciler depends on.
type Gateway interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
}

// OrderSync lets payment outcomes drive the order lifecycle without the
// payments package owning order transition rules.
type OrderSync interface {
	ApplyPaymentOutcome(record *models.PaymentRecord) (orderNumber, orderStatus string, err error)
}

// Service reconciles gateway payments into local records and keeps the
// webhook audit log.
type Service struct {
	repo    Repository
	gateway Gateway
	orders  OrderSync
}

// NewService creates a payment service from injected dependencies.
func NewService(repo Repository, gateway Gateway, orders OrderSync) *Service {
	return &Service{repo: repo, gateway: gateway, orders: orders}
}

// NewServiceFromDB creates a payment service from a GORM DB handle and a
// gateway client.
func NewServiceFromDB(db *gorm.DB, gateway Gateway, orders OrderSync) *Service {
	return NewService(NewRepository(db), gateway, orders)
}

// RecordWebhookEvent appends one audit row for an inbound notification.
// It runs before any business processing; a failure here fails the whole
// webhook request so the provider redelivers.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (*models.WebhookEvent, error) {
	_ = ctx
	if strings.TrimSpace(in.EventType) == "" && strings.TrimSpace(in.ResourceID) == "" {
		return nil, errors.New("event type or resource id is required")
	}

	event := &models.WebhookEvent{
		EventType:      strings.TrimSpace(in.EventType),
		ResourceID:     strings.TrimSpace(in.ResourceID),
		RequestID:      strings.TrimSpace(in.RequestID),
		PayloadJSON:    in.PayloadJSON,
		SignatureValid: in.SignatureValid,
	}
	if err := s.repo.CreateWebhookEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// MarkWebhookProcessed marks an event's processing attempt as completed
// and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// RecordWebhookFailure stores a failure reason on an event without
// marking it processed, used for signature rejections that never reach a
// processing attempt. Best effort: the audit row itself already exists.
func (s *Service) RecordWebhookFailure(ctx context.Context, webhookEventID uint, reason string) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	return s.repo.SetWebhookError(webhookEventID, reason)
}

// Reconcile fetches the authoritative payment from the gateway and
// upserts the local record keyed by provider payment id. Redelivering the
// same notification is a normal, successful no-structural-change update.
func (s *Service) Reconcile(ctx context.Context, providerPaymentID string) (*models.PaymentRecord, *ReconcileResult, error) {
	id := strings.TrimSpace(providerPaymentID)
	if id == "" {
		return nil, nil, errors.New("provider payment id is required")
	}

	payment, err := s.gateway.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch payment %s: %w", id, err)
	}

	record := recordFromPayment(payment)
	created, err := s.repo.UpsertPaymentRecord(record)
	if err != nil {
		return nil, nil, fmt.Errorf("upsert payment %s: %w", id, err)
	}

	result := &ReconcileResult{Created: created}
	if s.orders != nil && record.ExternalReference != "" {
		orderNumber, orderStatus, err := s.orders.ApplyPaymentOutcome(record)
		if err != nil {
			return record, result, fmt.Errorf("sync order for payment %s: %w", id, err)
		}
		result.OrderNumber = orderNumber
		result.OrderStatus = orderStatus
	}
	return record, result, nil
}

func recordFromPayment(p *mercadopago.Payment) *models.PaymentRecord {
	payerName := strings.TrimSpace(p.Payer.FirstName + " " + p.Payer.LastName)
	return &models.PaymentRecord{
		ProviderPaymentID: strconv.FormatInt(p.ID, 10),
		ExternalReference: strings.TrimSpace(p.ExternalReference),
		Status:            strings.ToLower(strings.TrimSpace(p.Status)),
		StatusDetail:      strings.TrimSpace(p.StatusDetail),
		PaymentType:       p.PaymentTypeID,
		PaymentMethod:     p.PaymentMethodID,
		TransactionAmount: p.TransactionAmount,
		Currency:          p.CurrencyID,
		PayerEmail:        strings.TrimSpace(p.Payer.Email),
		PayerName:         payerName,
		ProviderCreatedAt: p.DateCreated,
		ApprovedAt:        p.DateApproved,
		RawPayloadJSON:    rawPaymentJSON(p),
	}
}

func rawPaymentJSON(p *mercadopago.Payment) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(raw)
}

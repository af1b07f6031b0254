package controllers

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vivaarte/vivaarte/internal/pkg/database"
	"github.com/vivaarte/vivaarte/internal/pkg/env"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
	"github.com/vivaarte/vivaarte/internal/pkg/payments"
)

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// WebhookController ingests gateway payment notifications. The service
// constructor is injected so the handler can run against in-memory
// dependencies in tests; production wiring builds it per request from the
// global DB handle.
type WebhookController struct {
	newService func() *payments.Service
}

// NewWebhookController creates a webhook controller with the given
// payment-service constructor
func NewWebhookController(newService func() *payments.Service) *WebhookController {
	return &WebhookController{newService: newService}
}

func newPaymentService() *payments.Service {
	return payments.NewServiceFromDB(
		database.GetDB(),
		mercadopago.NewClientFromEnv(),
		newOrderService(),
	)
}

// HandlePaymentWebhook ingests gateway payment notifications. The body
// only carries a resource id pointer; everything authoritative is
// re-fetched from the gateway by the reconciler. Every parseable
// notification lands in the audit log before any processing, and a
// processing failure answers 500 so the provider redelivers.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	var body webhookBody
	if err := json.Unmarshal(rawBody, &body); err != nil || strings.TrimSpace(body.Data.ID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "malformed_body"})
	}

	signature := strings.TrimSpace(c.Get("x-signature"))
	requestID := strings.TrimSpace(c.Get("x-request-id"))
	secret := env.GetEnv("MP_WEBHOOK_SECRET", "")

	signatureValid := payments.VerifyWebhookSignature(body.Data.ID, requestID, signature, secret)

	svc := wc.newService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	event, err := svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
		EventType:      body.Type,
		ResourceID:     body.Data.ID,
		RequestID:      requestID,
		PayloadJSON:    string(rawBody),
		SignatureValid: signatureValid,
	})
	if err != nil {
		log.Printf("webhook: persisting event failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "webhook_persist_failed"})
	}

	if !signatureValid {
		// Audited but never processed; signed redeliveries are welcome.
		_ = svc.RecordWebhookFailure(ctx, event.ID, "invalid webhook signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "invalid_signature"})
	}

	if strings.ToLower(strings.TrimSpace(body.Type)) != "payment" {
		_ = svc.MarkWebhookProcessed(ctx, event.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "ignored": true})
	}

	record, result, reconcileErr := svc.Reconcile(ctx, body.Data.ID)
	if err := svc.MarkWebhookProcessed(ctx, event.ID, reconcileErr); err != nil {
		log.Printf("webhook: marking event %d processed failed: %v", event.ID, err)
	}
	if reconcileErr != nil {
		log.Printf("webhook: reconciling payment %s failed: %v", body.Data.ID, reconcileErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "reconcile_failed"})
	}

	log.Printf("webhook: payment %s reconciled (status=%s order=%s)",
		record.ProviderPaymentID, record.Status, result.OrderNumber)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// HandleAdminWebhookEvents lists the audit log for support follow-up
func HandleAdminWebhookEvents(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 50)
	repo := payments.NewRepository(database.GetDB())

	events, err := repo.ListWebhookEvents(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_events_unavailable"})
	}
	total, err := repo.CountWebhookEvents()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_events_unavailable"})
	}

	return c.Render("admin/webhooks", fiber.Map{
		"Title":  "Webhook events",
		"Events": events,
		"Total":  total,
	})
}

// Global webhook controller instance
var webhookController *WebhookController

// InitializeWebhookController initializes the global webhook controller
func InitializeWebhookController() {
	webhookController = NewWebhookController(newPaymentService)
}

// GetWebhookController returns the global webhook controller instance
func GetWebhookController() *WebhookController {
	if webhookController == nil {
		InitializeWebhookController()
	}
	return webhookController
}

// HandlePaymentWebhook is the package-level adapter used by the router
func HandlePaymentWebhook(c *fiber.Ctx) error {
	return GetWebhookController().HandlePaymentWebhook(c)
}

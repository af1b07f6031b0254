package payments

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vivaarte/vivaarte/app/models"
)

// Repository provides DB operations used by the payment service.
type Repository interface {
	CreateWebhookEvent(event *models.WebhookEvent) error
	MarkWebhookProcessed(id uint, processingError string) error
	SetWebhookError(id uint, processingError string) error
	UpsertPaymentRecord(record *models.PaymentRecord) (bool, error)
	GetPaymentRecordByProviderID(providerPaymentID string) (*models.PaymentRecord, error)
	ListWebhookEvents(offset, limit int) ([]models.WebhookEvent, error)
	CountWebhookEvents() (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEvent(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed":        true,
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// SetWebhookError stores a failure reason while leaving the processed
// flag untouched (signature rejections never reach a processing attempt).
func (r *gormRepository) SetWebhookError(id uint, processingError string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processing_error", processingError).Error
}

// UpsertPaymentRecord inserts or updates the record keyed on the unique
// provider payment id. The conflict clause makes the write atomic at the
// storage layer: of two concurrent deliveries for the same payment, the
// second observes and updates the first writer's row. Returns whether a
// new row was created.
func (r *gormRepository) UpsertPaymentRecord(record *models.PaymentRecord) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"external_reference",
			"status",
			"status_detail",
			"payment_type",
			"payment_method",
			"transaction_amount",
			"currency",
			"payer_email",
			"payer_name",
			"provider_created_at",
			"approved_at",
			"raw_payload_json",
			"updated_at",
		}),
	}).Create(record)
	if tx.Error != nil {
		return false, tx.Error
	}

	created := tx.RowsAffected == 1

	// Ensure ID and timestamps reflect the stored row after upsert.
	if err := r.db.Where("provider_payment_id = ?", record.ProviderPaymentID).First(record).Error; err != nil {
		return false, err
	}
	return created, nil
}

func (r *gormRepository) GetPaymentRecordByProviderID(providerPaymentID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.db.Where("provider_payment_id = ?", providerPaymentID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository) ListWebhookEvents(offset, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Order("received_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

func (r *gormRepository) CountWebhookEvents() (int64, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).Count(&count).Error
	return count, err
}

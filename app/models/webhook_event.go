package models

import "time"

// WebhookEvent is the append-only audit log of inbound gateway
// notifications. One row per delivery, created before any processing and
// never deleted; redeliveries intentionally produce separate rows.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventType       string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	ResourceID      string     `gorm:"type:varchar(64);not null;index" json:"resource_id"`
	RequestID       string     `gorm:"type:varchar(100)" json:"request_id"`
	PayloadJSON     string     `gorm:"type:longtext" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ReceivedAt      time.Time  `gorm:"autoCreateTime;index" json:"received_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

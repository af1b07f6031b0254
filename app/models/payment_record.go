package models

import "time"

// Provider payment statuses as delivered by the gateway. Stored verbatim;
// the order lifecycle maps them onto local statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusInProcess = "in_process"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// PaymentRecord is the local mirror of a gateway payment. Exactly one row
// exists per provider payment id; the unique index is what makes the
// reconciler's upsert safe under concurrent webhook deliveries.
type PaymentRecord struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProviderPaymentID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"provider_payment_id"`
	ExternalReference string     `gorm:"type:varchar(64);index" json:"external_reference"`
	Status            string     `gorm:"type:varchar(30);not null;index" json:"status"`
	StatusDetail      string     `gorm:"type:varchar(100)" json:"status_detail"`
	PaymentType       string     `gorm:"type:varchar(50)" json:"payment_type"`
	PaymentMethod     string     `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionAmount float64    `gorm:"type:decimal(10,2)" json:"transaction_amount"`
	Currency          string     `gorm:"type:varchar(10)" json:"currency"`
	PayerEmail        string     `gorm:"type:varchar(200)" json:"payer_email"`
	PayerName         string     `gorm:"type:varchar(200)" json:"payer_name"`
	ProviderCreatedAt *time.Time `gorm:"type:timestamp;default:null" json:"provider_created_at,omitempty"`
	ApprovedAt        *time.Time `gorm:"type:timestamp;default:null" json:"approved_at,omitempty"`
	RawPayloadJSON    string     `gorm:"type:longtext" json:"-"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsApproved reports whether the provider confirmed the payment.
func (p *PaymentRecord) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}

// IsFinalRejection reports whether the provider ended the payment without
// money changing hands.
func (p *PaymentRecord) IsFinalRejection() bool {
	return p.Status == PaymentStatusRejected || p.Status == PaymentStatusCancelled
}

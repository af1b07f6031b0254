package payments

// WebhookEventInput is the normalized input for webhook audit logging.
type WebhookEventInput struct {
	EventType      string
	ResourceID     string
	RequestID      string
	PayloadJSON    string
	SignatureValid bool
}

// ReconcileResult reports what the reconciler did with a notification.
type ReconcileResult struct {
	Created     bool
	OrderNumber string
	OrderStatus string
}

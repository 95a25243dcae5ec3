package entity

import "time"

const (
	TransactionOperationOffline    = "offline"
	TransactionOperationValidation = "validation"
)

type Transaction struct {
	ID uint64

	Reference string
	RequestID string

	InvoiceID uint64
	PartnerID uint64
	CompanyID uint64
	TokenID   uint64
	Provider  int32

	Amount   float64
	Currency string

	Operation string

	State        int32
	StateMessage *string

	ProviderTxRef *string

	CreatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TransactionEvent struct {
	ID uint64

	TransactionID uint64

	EventType string

	OldState *int32
	NewState int32

	Detail *string

	CreatedAt time.Time
}

package entity

import "time"

const (
	InvoiceStateDraft  = "draft"
	InvoiceStatePosted = "posted"
	InvoiceStateCancel = "cancel"
)

const (
	MoveTypeOutInvoice = "out_invoice"
	MoveTypeOutRefund  = "out_refund"
	MoveTypeInInvoice  = "in_invoice"
	MoveTypeInRefund   = "in_refund"
	MoveTypeEntry      = "entry"
)

// Invoice mirrors the ERP accounting document. This service only reads
// invoices; posting and reconciliation stay with the accounting module.
type Invoice struct {
	ID uint64

	Name string
	Ref  *string

	PartnerID uint64
	CompanyID uint64

	MoveType string
	State    string

	Currency       string
	AmountTotal    float64
	AmountResidual float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chargeable reports whether the document kind supports a token charge.
func (i *Invoice) Chargeable() bool {
	return i.MoveType == MoveTypeOutInvoice || i.MoveType == MoveTypeOutRefund
}

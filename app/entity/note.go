package entity

import "time"

// InvoiceNote is a human-readable entry on the invoice activity trail.
// Writes are best-effort and never block the charge outcome.
type InvoiceNote struct {
	ID uint64

	InvoiceID uint64

	Author string
	Body   string

	CreatedAt time.Time
}

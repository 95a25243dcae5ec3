package entity

import "time"

// PaymentToken is a saved payment credential owned by one partner. The
// charge flow only reads tokens; enrollment happens on the gateway's
// hosted page.
type PaymentToken struct {
	ID uint64

	PartnerID uint64
	CompanyID uint64

	Provider    int32
	ProviderRef string

	PaymentMethod *string
	DisplayName   string

	Active bool

	CreatedAt time.Time
}

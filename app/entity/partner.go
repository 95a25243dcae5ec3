package entity

import "time"

type Partner struct {
	ID uint64

	Name  string
	Email *string

	// CommercialPartnerID points to the top-level billing entity when the
	// partner is a sub-contact. Zero means the partner is its own
	// commercial entity.
	CommercialPartnerID uint64

	CreatedAt time.Time
}

// CommercialID resolves the entity token ownership is compared against.
func (p *Partner) CommercialID() uint64 {
	if p.CommercialPartnerID > 0 {
		return p.CommercialPartnerID
	}
	return p.ID
}

type Company struct {
	ID uint64

	Name     string
	Currency string

	CreatedAt time.Time
}

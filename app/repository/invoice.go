package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
)

type InvoiceRepository struct {
	db DBTX
}

func NewInvoiceRepository(db DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uint64) (*entity.Invoice, error) {
	query := `
		SELECT id, name, ref, partner_id, company_id, move_type, state,
			currency, amount_total, amount_residual, created_at, updated_at
		FROM invoices
		WHERE id = ?
	`

	var ref sql.NullString
	invoice := &entity.Invoice{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.Name,
		&ref,
		&invoice.PartnerID,
		&invoice.CompanyID,
		&invoice.MoveType,
		&invoice.State,
		&invoice.Currency,
		&invoice.AmountTotal,
		&invoice.AmountResidual,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	invoice.Ref = stringPtrFromNull(ref)
	return invoice, nil
}

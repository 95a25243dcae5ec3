package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
)

type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `id, partner_id, company_id, provider, provider_ref, payment_method, display_name, active, created_at`

func (r *TokenRepository) FindByID(ctx context.Context, id uint64) (*entity.PaymentToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM payment_tokens
		WHERE id = ?
	`

	token, err := scanToken(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// ListActiveForCommercial returns the usable tokens owned anywhere in a
// commercial entity's family of contacts, optionally restricted to the
// given provider codes. Token ownership is a commercial-entity concern,
// so listing has to span sub-contacts the same way the charge check does.
func (r *TokenRepository) ListActiveForCommercial(ctx context.Context, commercialID uint64, providers []int32) ([]*entity.PaymentToken, error) {
	query := `
		SELECT t.id, t.partner_id, t.company_id, t.provider, t.provider_ref,
			t.payment_method, t.display_name, t.active, t.created_at
		FROM payment_tokens t
		JOIN partners p ON p.id = t.partner_id
		WHERE t.active = 1
		  AND (p.id = ? OR p.commercial_partner_id = ?)
	`
	args := []interface{}{commercialID, commercialID}

	if len(providers) > 0 {
		placeholders := make([]string, 0, len(providers))
		for _, code := range providers {
			placeholders = append(placeholders, "?")
			args = append(args, code)
		}
		query += " AND t.provider IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY t.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]*entity.PaymentToken, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanToken(scan rowScanner) (*entity.PaymentToken, error) {
	var paymentMethod sql.NullString
	token := &entity.PaymentToken{}
	err := scan.Scan(
		&token.ID,
		&token.PartnerID,
		&token.CompanyID,
		&token.Provider,
		&token.ProviderRef,
		&paymentMethod,
		&token.DisplayName,
		&token.Active,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	token.PaymentMethod = stringPtrFromNull(paymentMethod)
	return token, nil
}

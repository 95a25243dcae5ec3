package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
)

type PartnerRepository struct {
	db DBTX
}

func NewPartnerRepository(db DBTX) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) FindByID(ctx context.Context, id uint64) (*entity.Partner, error) {
	query := `
		SELECT id, name, email, commercial_partner_id, created_at
		FROM partners
		WHERE id = ?
	`

	var email sql.NullString
	var commercialPartnerID sql.NullInt64
	partner := &entity.Partner{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&partner.ID,
		&partner.Name,
		&email,
		&commercialPartnerID,
		&partner.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	partner.Email = stringPtrFromNull(email)
	if commercialPartnerID.Valid {
		partner.CommercialPartnerID = uint64(commercialPartnerID.Int64)
	}
	return partner, nil
}

type CompanyRepository struct {
	db DBTX
}

func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id uint64) (*entity.Company, error) {
	query := `
		SELECT id, name, currency, created_at
		FROM companies
		WHERE id = ?
	`

	company := &entity.Company{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Currency,
		&company.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return company, nil
}

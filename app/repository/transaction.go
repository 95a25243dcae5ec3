package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
)

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, reference, request_id, invoice_id, partner_id, company_id, token_id,
	provider, amount, currency, operation, state, state_message, provider_tx_ref,
	created_by, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (
			reference, request_id, invoice_id, partner_id, company_id, token_id,
			provider, amount, currency, operation, state, state_message, provider_tx_ref,
			created_by, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.Reference,
		tx.RequestID,
		tx.InvoiceID,
		tx.PartnerID,
		tx.CompanyID,
		tx.TokenID,
		tx.Provider,
		tx.Amount,
		tx.Currency,
		tx.Operation,
		tx.State,
		nullableStringValue(tx.StateMessage),
		nullableStringValue(tx.ProviderTxRef),
		tx.CreatedBy,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrTransactionAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = uint64(id)
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	query := `
		UPDATE transactions SET
			reference = ?,
			state = ?,
			state_message = ?,
			provider_tx_ref = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.Reference,
		tx.State,
		nullableStringValue(tx.StateMessage),
		nullableStringValue(tx.ProviderTxRef),
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE request_id = ?
		LIMIT 1
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, requestID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListStalePending returns in-flight transactions that have not been
// touched since the cutoff and carry a provider-side reference.
func (r *TransactionRepository) ListStalePending(ctx context.Context, before time.Time, limit int32) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE state IN (?, ?)
		  AND provider_tx_ref IS NOT NULL
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		int32(types.TransactionStatePending),
		int32(types.TransactionStateAuthorized),
		before,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanTransaction(scan rowScanner) (*entity.Transaction, error) {
	var stateMessage sql.NullString
	var providerTxRef sql.NullString
	tx := &entity.Transaction{}
	err := scan.Scan(
		&tx.ID,
		&tx.Reference,
		&tx.RequestID,
		&tx.InvoiceID,
		&tx.PartnerID,
		&tx.CompanyID,
		&tx.TokenID,
		&tx.Provider,
		&tx.Amount,
		&tx.Currency,
		&tx.Operation,
		&tx.State,
		&stateMessage,
		&providerTxRef,
		&tx.CreatedBy,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.StateMessage = stringPtrFromNull(stateMessage)
	tx.ProviderTxRef = stringPtrFromNull(providerTxRef)
	return tx, nil
}

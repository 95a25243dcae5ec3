package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
)

type InvoiceNoteRepository struct {
	db DBTX
}

func NewInvoiceNoteRepository(db DBTX) *InvoiceNoteRepository {
	return &InvoiceNoteRepository{db: db}
}

func (r *InvoiceNoteRepository) Create(ctx context.Context, note *entity.InvoiceNote) error {
	query := `
		INSERT INTO invoice_notes (invoice_id, author, body, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		note.InvoiceID,
		note.Author,
		note.Body,
		note.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	note.ID = uint64(id)

	return nil
}

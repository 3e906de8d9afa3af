// Package repository provides PostgreSQL and MySQL persistence for files and
// transfers. Every method joins the ambient transaction through database.GetTx.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/filedrop/internal/database"
	apperrors "github.com/allisson/filedrop/internal/errors"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

// PostgreSQLFileRepository handles file persistence for PostgreSQL.
type PostgreSQLFileRepository struct {
	db *sql.DB
}

// NewPostgreSQLFileRepository creates a new PostgreSQLFileRepository.
func NewPostgreSQLFileRepository(db *sql.DB) *PostgreSQLFileRepository {
	return &PostgreSQLFileRepository{db: db}
}

// Create inserts the file row with its envelope parameters. The ciphertext is
// not stored here.
func (r *PostgreSQLFileRepository) Create(ctx context.Context, file *transferDomain.File) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO files
			  (id, sender_id, name, size, mime_type, storage_key, salt, iv, auth_tag, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(ctx, query,
		file.ID,
		file.SenderID,
		file.Name,
		file.Size,
		file.MimeType,
		file.StorageKey,
		file.Envelope.Salt,
		file.Envelope.IV,
		file.Envelope.AuthTag,
		file.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file")
	}
	return nil
}

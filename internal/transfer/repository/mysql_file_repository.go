package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/filedrop/internal/database"
	apperrors "github.com/allisson/filedrop/internal/errors"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

// MySQLFileRepository handles file persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLFileRepository struct {
	db *sql.DB
}

// NewMySQLFileRepository creates a new MySQLFileRepository.
func NewMySQLFileRepository(db *sql.DB) *MySQLFileRepository {
	return &MySQLFileRepository{db: db}
}

// Create inserts the file row with its envelope parameters.
func (r *MySQLFileRepository) Create(ctx context.Context, file *transferDomain.File) error {
	querier := database.GetTx(ctx, r.db)

	id, err := file.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal file id")
	}
	senderID, err := file.SenderID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sender id")
	}

	query := `INSERT INTO files
			  (id, sender_id, name, size, mime_type, storage_key, salt, iv, auth_tag, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		id,
		senderID,
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

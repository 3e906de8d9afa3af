package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/database"
	apperrors "github.com/allisson/filedrop/internal/errors"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

// PostgreSQLTransferRepository handles transfer persistence for PostgreSQL.
type PostgreSQLTransferRepository struct {
	db *sql.DB
}

// NewPostgreSQLTransferRepository creates a new PostgreSQLTransferRepository.
func NewPostgreSQLTransferRepository(db *sql.DB) *PostgreSQLTransferRepository {
	return &PostgreSQLTransferRepository{db: db}
}

// Create inserts a transfer.
func (r *PostgreSQLTransferRepository) Create(ctx context.Context, transfer *transferDomain.Transfer) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO transfers
			  (id, file_id, sender_id, receiver_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(ctx, query,
		transfer.ID,
		transfer.FileID,
		transfer.SenderID,
		transfer.ReceiverID,
		string(transfer.Status),
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transfer")
	}
	return nil
}

// GetWithFile retrieves a transfer joined with its file.
func (r *PostgreSQLTransferRepository) GetWithFile(
	ctx context.Context,
	id uuid.UUID,
) (*transferDomain.TransferWithFile, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT t.id, t.file_id, t.sender_id, t.receiver_id, t.status, t.created_at, t.updated_at,
			  f.id, f.sender_id, f.name, f.size, f.mime_type, f.storage_key, f.salt, f.iv, f.auth_tag, f.created_at
			  FROM transfers t
			  JOIN files f ON f.id = t.file_id
			  WHERE t.id = $1`

	var twf transferDomain.TransferWithFile
	var status string
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&twf.ID, &twf.FileID, &twf.SenderID, &twf.ReceiverID, &status, &twf.CreatedAt, &twf.UpdatedAt,
		&twf.File.ID, &twf.File.SenderID, &twf.File.Name, &twf.File.Size, &twf.File.MimeType,
		&twf.File.StorageKey, &twf.File.Envelope.Salt, &twf.File.Envelope.IV, &twf.File.Envelope.AuthTag,
		&twf.File.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transferDomain.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transfer")
	}
	twf.Status = transferDomain.Status(status)

	return &twf, nil
}

// MarkDownloaded moves a pending transfer to downloaded.
func (r *PostgreSQLTransferRepository) MarkDownloaded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE transfers SET status = $1, updated_at = $2
			  WHERE id = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query,
		string(transferDomain.StatusDownloaded), at, id, string(transferDomain.StatusPending))
	if err != nil {
		return false, apperrors.Wrap(err, "failed to update transfer status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected > 0, nil
}

// ListSent lists transfers sent by senderID, newest first, with receiver emails.
func (r *PostgreSQLTransferRepository) ListSent(
	ctx context.Context,
	senderID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	return r.list(ctx, "t.sender_id", "t.receiver_id", senderID, offset, limit)
}

// ListReceived lists transfers addressed to receiverID, newest first, with sender emails.
func (r *PostgreSQLTransferRepository) ListReceived(
	ctx context.Context,
	receiverID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	return r.list(ctx, "t.receiver_id", "t.sender_id", receiverID, offset, limit)
}

func (r *PostgreSQLTransferRepository) list(
	ctx context.Context,
	ownerColumn, counterpartyColumn string,
	userID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT t.id, f.name, f.size, f.mime_type, t.status, u.email, t.created_at, t.updated_at
			  FROM transfers t
			  JOIN files f ON f.id = t.file_id
			  JOIN users u ON u.id = %s
			  WHERE %s = $1
			  ORDER BY t.created_at DESC, t.id DESC
			  LIMIT $2 OFFSET $3`, counterpartyColumn, ownerColumn)

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transfers")
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]*transferDomain.TransferSummary, 0)
	for rows.Next() {
		var s transferDomain.TransferSummary
		var status string
		if err := rows.Scan(
			&s.ID, &s.FileName, &s.Size, &s.MimeType, &status, &s.CounterpartyEmail, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transfer")
		}
		s.Status = transferDomain.Status(status)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transfers")
	}

	return summaries, nil
}

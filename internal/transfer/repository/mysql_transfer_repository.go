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

// MySQLTransferRepository handles transfer persistence for MySQL.
type MySQLTransferRepository struct {
	db *sql.DB
}

// NewMySQLTransferRepository creates a new MySQLTransferRepository.
func NewMySQLTransferRepository(db *sql.DB) *MySQLTransferRepository {
	return &MySQLTransferRepository{db: db}
}

func marshalUUIDs(ids ...uuid.UUID) ([]any, error) {
	out := make([]any, len(ids))
	for i, id := range ids {
		b, err := id.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal UUID")
		}
		out[i] = b
	}
	return out, nil
}

func unmarshalUUID(dst *uuid.UUID, src []byte) error {
	if err := dst.UnmarshalBinary(src); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return nil
}

// Create inserts a transfer.
func (r *MySQLTransferRepository) Create(ctx context.Context, transfer *transferDomain.Transfer) error {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalUUIDs(transfer.ID, transfer.FileID, transfer.SenderID, transfer.ReceiverID)
	if err != nil {
		return err
	}

	query := `INSERT INTO transfers
			  (id, file_id, sender_id, receiver_id, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	args := append(ids, string(transfer.Status), transfer.CreatedAt, transfer.UpdatedAt)
	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create transfer")
	}
	return nil
}

// GetWithFile retrieves a transfer joined with its file.
func (r *MySQLTransferRepository) GetWithFile(
	ctx context.Context,
	id uuid.UUID,
) (*transferDomain.TransferWithFile, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT t.id, t.file_id, t.sender_id, t.receiver_id, t.status, t.created_at, t.updated_at,
			  f.sender_id, f.name, f.size, f.mime_type, f.storage_key, f.salt, f.iv, f.auth_tag, f.created_at
			  FROM transfers t
			  JOIN files f ON f.id = t.file_id
			  WHERE t.id = ?`

	var twf transferDomain.TransferWithFile
	var tID, fileID, senderID, receiverID, fileSenderID []byte
	var status string
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&tID, &fileID, &senderID, &receiverID, &status, &twf.CreatedAt, &twf.UpdatedAt,
		&fileSenderID, &twf.File.Name, &twf.File.Size, &twf.File.MimeType,
		&twf.File.StorageKey, &twf.File.Envelope.Salt, &twf.File.Envelope.IV, &twf.File.Envelope.AuthTag,
		&twf.File.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transferDomain.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transfer")
	}

	for _, pair := range []struct {
		dst *uuid.UUID
		src []byte
	}{
		{&twf.ID, tID},
		{&twf.FileID, fileID},
		{&twf.SenderID, senderID},
		{&twf.ReceiverID, receiverID},
		{&twf.File.SenderID, fileSenderID},
	} {
		if err := unmarshalUUID(pair.dst, pair.src); err != nil {
			return nil, err
		}
	}
	twf.File.ID = twf.FileID
	twf.Status = transferDomain.Status(status)

	return &twf, nil
}

// MarkDownloaded moves a pending transfer to downloaded.
func (r *MySQLTransferRepository) MarkDownloaded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE transfers SET status = ?, updated_at = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		string(transferDomain.StatusDownloaded), at, idBytes, string(transferDomain.StatusPending))
	if err != nil {
		return false, apperrors.Wrap(err, "failed to update transfer status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected > 0, nil
}

// ListSent lists transfers sent by senderID, newest first.
func (r *MySQLTransferRepository) ListSent(
	ctx context.Context,
	senderID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	return r.list(ctx, "t.sender_id", "t.receiver_id", senderID, offset, limit)
}

// ListReceived lists transfers addressed to receiverID, newest first.
func (r *MySQLTransferRepository) ListReceived(
	ctx context.Context,
	receiverID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	return r.list(ctx, "t.receiver_id", "t.sender_id", receiverID, offset, limit)
}

func (r *MySQLTransferRepository) list(
	ctx context.Context,
	ownerColumn, counterpartyColumn string,
	userID uuid.UUID,
	offset, limit int,
) ([]*transferDomain.TransferSummary, error) {
	querier := database.GetTx(ctx, r.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := fmt.Sprintf(`SELECT t.id, f.name, f.size, f.mime_type, t.status, u.email, t.created_at, t.updated_at
			  FROM transfers t
			  JOIN files f ON f.id = t.file_id
			  JOIN users u ON u.id = %s
			  WHERE %s = ?
			  ORDER BY t.created_at DESC, t.id DESC
			  LIMIT ? OFFSET ?`, counterpartyColumn, ownerColumn)

	rows, err := querier.QueryContext(ctx, query, userIDBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transfers")
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]*transferDomain.TransferSummary, 0)
	for rows.Next() {
		var s transferDomain.TransferSummary
		var idBytes []byte
		var status string
		if err := rows.Scan(
			&idBytes, &s.FileName, &s.Size, &s.MimeType, &status, &s.CounterpartyEmail, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transfer")
		}
		if err := unmarshalUUID(&s.ID, idBytes); err != nil {
			return nil, err
		}
		s.Status = transferDomain.Status(status)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transfers")
	}

	return summaries, nil
}

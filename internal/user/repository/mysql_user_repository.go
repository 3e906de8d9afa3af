package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/database"
	"github.com/allisson/filedrop/internal/user/domain"

	apperrors "github.com/allisson/filedrop/internal/errors"
)

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, email, password, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	// BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(
		ctx, query, uuidBytes, user.Email, user.Password, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT id, email, password, created_at, updated_at
			  FROM users WHERE id = ?`

	user, err := r.scanUser(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, uuidBytes))
	if err != nil {
		return nil, wrapMySQLLookupError(err, "failed to get user by id")
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password, created_at, updated_at
			  FROM users WHERE email = ?`

	user, err := r.scanUser(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrapMySQLLookupError(err, "failed to get user by email")
	}
	return user, nil
}

func (r *MySQLUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var idBytes []byte
	if err := row.Scan(&idBytes, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &user, nil
}

func wrapMySQLLookupError(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return apperrors.Wrap(err, msg)
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

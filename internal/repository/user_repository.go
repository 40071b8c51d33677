package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizdeck/internal/domain"
	"quizdeck/internal/repository/models"
	"quizdeck/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `
	id "id",
	username "username",
	email "email",
	first_name "first_name",
	last_name "last_name",
	password_hash "password_hash",
	google_id "google_id",
	created_at "created_at",
	updated_at "updated_at"`

// sqlxUserRepository implements domain.UserRepository using sqlx. All
// methods honor a transaction carried in the context.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName.String,
		LastName:     m.LastName.String,
		PasswordHash: m.PasswordHash.String,
		GoogleID:     m.GoogleID.String,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    util.StringToNullString(u.FirstName),
		LastName:     util.StringToNullString(u.LastName),
		PasswordHash: util.StringToNullString(u.PasswordHash),
		GoogleID:     util.StringToNullString(u.GoogleID),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// CreateUser inserts a new user row.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	if m.ID == "" {
		m.ID = util.NewULID()
		user.ID = m.ID
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `INSERT INTO users (id, username, email, first_name, last_name, password_hash, google_id, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		m.ID, m.Username, m.Email, m.FirstName, m.LastName,
		m.PasswordHash, m.GoogleID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) getUserBy(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE ` + where

	var m models.User
	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &m, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetUserByID retrieves a user by id, returning (nil, nil) when absent.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUserBy(ctx, `id = :1`, id)
}

// GetUserByUsername retrieves a user by username, returning (nil, nil)
// when absent.
func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUserBy(ctx, `username = :1`, username)
}

// GetUserByEmail retrieves a user by email, returning (nil, nil) when
// absent.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserBy(ctx, `email = :1`, email)
}

// GetUserByGoogleID retrieves a user by Google id, returning (nil, nil)
// when absent.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getUserBy(ctx, `google_id = :1`, googleID)
}

// UpdateUser updates the editable account fields.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	m := fromDomainUser(user)

	query := `UPDATE users SET
		email = :1,
		first_name = :2,
		last_name = :3,
		google_id = :4,
		updated_at = :5
	WHERE id = :6`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query,
		m.Email, m.FirstName, m.LastName, m.GoogleID, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *sqlxUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = :1, updated_at = :2 WHERE id = :3`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser hard-deletes the user; the schema cascades to the profile and
// to all attempts.
func (r *sqlxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	query := `DELETE FROM users WHERE id = :1`

	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

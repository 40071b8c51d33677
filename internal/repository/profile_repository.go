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

// sqlxProfileRepository implements domain.ProfileRepository using sqlx.
// CreateProfile honors a transaction carried in the context so the profile
// can be created atomically with its user.
type sqlxProfileRepository struct {
	db *sqlx.DB
}

// NewSQLXProfileRepository creates a new instance of sqlxProfileRepository.
func NewSQLXProfileRepository(db *sqlx.DB) domain.ProfileRepository {
	return &sqlxProfileRepository{db: db}
}

// CreateProfile inserts a new profile row.
func (r *sqlxProfileRepository) CreateProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile.ID == "" {
		profile.ID = util.NewULID()
	}
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `INSERT INTO user_profiles (id, user_id, avatar_path, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5)`

	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		profile.ID, profile.UserID, util.StringToNullString(profile.AvatarPath),
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// GetProfileByUserID retrieves the profile for a user, returning
// (nil, nil) when absent.
func (r *sqlxProfileRepository) GetProfileByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT
		id "id",
		user_id "user_id",
		avatar_path "avatar_path",
		created_at "created_at",
		updated_at "updated_at"
	FROM user_profiles
	WHERE user_id = :1`

	var m models.UserProfile
	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &m, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &domain.UserProfile{
		ID:         m.ID,
		UserID:     m.UserID,
		AvatarPath: m.AvatarPath.String,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

// UpdateAvatar replaces the stored avatar path.
func (r *sqlxProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarPath string) error {
	query := `UPDATE user_profiles SET avatar_path = :1, updated_at = :2 WHERE user_id = :3`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, util.StringToNullString(avatarPath), time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar for user %s: %w", userID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered identity. PasswordHash is empty for accounts
// created through Google sign-in.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	GoogleID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User instance.
func NewUser(username, email string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user.
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Username == "" {
		errs = append(errs, NewMissingFieldError("username"))
	}
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DisplayName is "first last" trimmed, falling back to the username when
// both name parts are empty.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// UserProfile holds per-user presentation state, one-to-one with a user.
// It is created in the same transaction as the user itself, never on its
// own.
type UserProfile struct {
	ID         string
	UserID     string
	AvatarPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// QuizAttempt is one immutable record of a user completing a quiz. Score is
// the raw correct-answer count, not a percentage. Attempts are append-only:
// no update or recompute after creation.
type QuizAttempt struct {
	ID          string
	UserID      string
	QuizID      string
	Score       int
	CompletedAt time.Time
}

// AttemptWithQuiz joins an attempt with its quiz's title and CURRENT
// question count. The count is re-derived at read time, so editing a quiz
// retroactively changes historical percentages; that behavior is inherited
// and kept deliberately (see DESIGN.md).
type AttemptWithQuiz struct {
	QuizAttempt
	QuizTitle     string
	QuestionCount int
}

// LeaderboardRow is one user's summed score across all attempts.
type LeaderboardRow struct {
	Username   string
	FirstName  string
	LastName   string
	TotalScore int
}

// DisplayName mirrors User.DisplayName for aggregated rows.
func (r *LeaderboardRow) DisplayName() string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return r.Username
	}
	return name
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, userID string) error
}

// ProfileRepository defines the interface for user profile persistence.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *UserProfile) error
	GetProfileByUserID(ctx context.Context, userID string) (*UserProfile, error)
	UpdateAvatar(ctx context.Context, userID, avatarPath string) error
}

// AttemptRepository defines the interface for quiz attempt persistence.
// Attempts are append-only.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) error
	GetAttemptsByUserID(ctx context.Context, userID string) ([]AttemptWithQuiz, error)
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

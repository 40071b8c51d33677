package models

import (
	"database/sql"
	"time"
)

// User mirrors the users table. PasswordHash is NULL for accounts created
// via Google sign-in; GoogleID is NULL for password accounts. FirstName and
// LastName are NULL when blank: Oracle stores the empty string as NULL.
type User struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	PasswordHash sql.NullString `db:"password_hash"`
	GoogleID     sql.NullString `db:"google_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// UserProfile mirrors the user_profiles table. AvatarPath is NULL until
// the first upload.
type UserProfile struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	AvatarPath sql.NullString `db:"avatar_path"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// QuizAttempt mirrors the quiz_attempts table. Rows are append-only.
type QuizAttempt struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	QuizID      string    `db:"quiz_id"`
	Score       int       `db:"score"`
	CompletedAt time.Time `db:"completed_at"`
}

// AttemptWithQuiz is an attempt row joined with its quiz's title and the
// quiz's current question count.
type AttemptWithQuiz struct {
	QuizAttempt
	QuizTitle     string `db:"quiz_title"`
	QuestionCount int    `db:"question_count"`
}

// LeaderboardRow is one row of the summed-score-per-user aggregation.
type LeaderboardRow struct {
	Username   string         `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	TotalScore int            `db:"total_score"`
}

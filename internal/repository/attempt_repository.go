package repository

import (
	"context"
	"fmt"
	"time"

	"quizdeck/internal/domain"
	"quizdeck/internal/repository/models"
	"quizdeck/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
// Attempt rows are append-only: no update or delete statements exist here.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

// CreateAttempt appends one immutable attempt row.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = util.NewULID()
	}
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now()
	}

	query := `INSERT INTO quiz_attempts (id, user_id, quiz_id, score, completed_at)
	          VALUES (:1, :2, :3, :4, :5)`

	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.Score, attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

// GetAttemptsByUserID returns the user's attempts newest first, each joined
// with the quiz title and the quiz's CURRENT question count. The count is
// re-derived per read, so editing a quiz shifts historical percentages;
// inherited behavior, kept as-is.
func (r *sqlxAttemptRepository) GetAttemptsByUserID(ctx context.Context, userID string) ([]domain.AttemptWithQuiz, error) {
	query := `SELECT
		a.id "id",
		a.user_id "user_id",
		a.quiz_id "quiz_id",
		a.score "score",
		a.completed_at "completed_at",
		q.title "quiz_title",
		(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id) "question_count"
	FROM quiz_attempts a
	JOIN quizzes q ON a.quiz_id = q.id
	WHERE a.user_id = :1
	ORDER BY a.completed_at DESC`

	exec := GetExecutor(ctx, r.db)
	var rows []models.AttemptWithQuiz
	if err := exec.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get attempts for user %s: %w", userID, err)
	}

	attempts := make([]domain.AttemptWithQuiz, len(rows))
	for i, m := range rows {
		attempts[i] = domain.AttemptWithQuiz{
			QuizAttempt: domain.QuizAttempt{
				ID:          m.ID,
				UserID:      m.UserID,
				QuizID:      m.QuizID,
				Score:       m.Score,
				CompletedAt: m.CompletedAt,
			},
			QuizTitle:     m.QuizTitle,
			QuestionCount: m.QuestionCount,
		}
	}
	return attempts, nil
}

// GetLeaderboard sums scores per user and returns the top rows by total,
// descending. Tie order among equal totals is whatever the database
// produces.
func (r *sqlxAttemptRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error) {
	query := `SELECT
		u.username "username",
		u.first_name "first_name",
		u.last_name "last_name",
		SUM(a.score) "total_score"
	FROM quiz_attempts a
	JOIN users u ON a.user_id = u.id
	GROUP BY u.username, u.first_name, u.last_name
	ORDER BY SUM(a.score) DESC
	FETCH FIRST :1 ROWS ONLY`

	exec := GetExecutor(ctx, r.db)
	var rows []models.LeaderboardRow
	if err := exec.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	leaders := make([]domain.LeaderboardRow, len(rows))
	for i, m := range rows {
		leaders[i] = domain.LeaderboardRow{
			Username:   m.Username,
			FirstName:  m.FirstName.String,
			LastName:   m.LastName.String,
			TotalScore: m.TotalScore,
		}
	}
	return leaders, nil
}

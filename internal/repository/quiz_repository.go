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

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description.String,
		TimeMinutes: m.TimeMinutes,
		Difficulty:  m.Difficulty,
		IconName:    m.IconName,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ListQuizzes returns all quizzes with their current question counts,
// oldest first.
func (r *sqlxQuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	query := `SELECT
		q.id "id",
		q.title "title",
		q.description "description",
		q.time_minutes "time_minutes",
		q.difficulty "difficulty",
		q.icon_name "icon_name",
		q.created_at "created_at",
		q.updated_at "updated_at",
		(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id) "questions_count"
	FROM quizzes q
	ORDER BY q.created_at`

	exec := GetExecutor(ctx, r.db)
	var rows []models.QuizSummary
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	summaries := make([]domain.QuizSummary, len(rows))
	for i := range rows {
		summaries[i] = domain.QuizSummary{
			Quiz:           *toDomainQuiz(&rows[i].Quiz),
			QuestionsCount: rows[i].QuestionsCount,
		}
	}
	return summaries, nil
}

// GetQuizByID returns the bare quiz row, or (nil, nil) when absent.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	query := `SELECT
		id "id",
		title "title",
		description "description",
		time_minutes "time_minutes",
		difficulty "difficulty",
		icon_name "icon_name",
		created_at "created_at",
		updated_at "updated_at"
	FROM quizzes
	WHERE id = :1`

	var m models.Quiz
	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id %s: %w", id, err)
	}
	return toDomainQuiz(&m), nil
}

// GetQuizWithQuestions loads the quiz, its questions in insertion order,
// and every question's options. Returns (nil, nil) when the quiz is absent.
func (r *sqlxQuizRepository) GetQuizWithQuestions(ctx context.Context, id string) (*domain.Quiz, error) {
	quiz, err := r.GetQuizByID(ctx, id)
	if err != nil || quiz == nil {
		return quiz, err
	}

	questionQuery := `SELECT
		id "id",
		quiz_id "quiz_id",
		text "text",
		position "position",
		created_at "created_at"
	FROM questions
	WHERE quiz_id = :1
	ORDER BY position`

	exec := GetExecutor(ctx, r.db)
	var questionRows []models.Question
	if err := exec.SelectContext(ctx, &questionRows, questionQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", id, err)
	}

	optionQuery := `SELECT
		o.id "id",
		o.question_id "question_id",
		o.text "text",
		o.is_correct "is_correct",
		o.created_at "created_at"
	FROM options o
	JOIN questions qs ON o.question_id = qs.id
	WHERE qs.quiz_id = :1
	ORDER BY o.created_at`

	var optionRows []models.Option
	if err := exec.SelectContext(ctx, &optionRows, optionQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get options for quiz %s: %w", id, err)
	}

	optionsByQuestion := make(map[string][]domain.Option, len(questionRows))
	for _, o := range optionRows {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], domain.Option{
			ID:         o.ID,
			QuestionID: o.QuestionID,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect == 1,
		})
	}

	quiz.Questions = make([]domain.Question, len(questionRows))
	for i, q := range questionRows {
		quiz.Questions[i] = domain.Question{
			ID:       q.ID,
			QuizID:   q.QuizID,
			Text:     q.Text,
			Position: q.Position,
			Options:  optionsByQuestion[q.ID],
		}
	}
	return quiz, nil
}

// SaveQuiz inserts the quiz together with its questions and options.
// Ids and timestamps are assigned here; question positions default to
// insertion order. Honors a transaction carried in the context.
func (r *sqlxQuizRepository) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	now := time.Now()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	exec := GetExecutor(ctx, r.db)

	quizQuery := `INSERT INTO quizzes (id, title, description, time_minutes, difficulty, icon_name, created_at, updated_at)
	              VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := exec.ExecContext(ctx, quizQuery,
		quiz.ID, quiz.Title, util.StringToNullString(quiz.Description),
		quiz.TimeMinutes, quiz.Difficulty, quiz.IconName, quiz.CreatedAt, quiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz %s: %w", quiz.Title, err)
	}

	questionQuery := `INSERT INTO questions (id, quiz_id, text, position, created_at)
	                  VALUES (:1, :2, :3, :4, :5)`
	optionQuery := `INSERT INTO options (id, question_id, text, is_correct, created_at)
	                VALUES (:1, :2, :3, :4, :5)`

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		q.QuizID = quiz.ID
		if q.Position == 0 {
			q.Position = i + 1
		}
		if _, err := exec.ExecContext(ctx, questionQuery, q.ID, q.QuizID, q.Text, q.Position, now); err != nil {
			return fmt.Errorf("failed to save question %d of quiz %s: %w", q.Position, quiz.Title, err)
		}

		for j := range q.Options {
			o := &q.Options[j]
			if o.ID == "" {
				o.ID = util.NewULID()
			}
			o.QuestionID = q.ID
			isCorrect := 0
			if o.IsCorrect {
				isCorrect = 1
			}
			if _, err := exec.ExecContext(ctx, optionQuery, o.ID, o.QuestionID, o.Text, isCorrect, now); err != nil {
				return fmt.Errorf("failed to save option for question %d of quiz %s: %w", q.Position, quiz.Title, err)
			}
		}
	}
	return nil
}

package models

import (
	"database/sql"
	"time"
)

// Quiz mirrors the quizzes table. Description is NULL when blank; Oracle
// stores the empty string as NULL.
type Quiz struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	TimeMinutes int            `db:"time_minutes"`
	Difficulty  string         `db:"difficulty"`
	IconName    string         `db:"icon_name"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// QuizSummary is a quiz row joined with its current question count.
type QuizSummary struct {
	Quiz
	QuestionsCount int `db:"questions_count"`
}

// Question mirrors the questions table.
type Question struct {
	ID        string    `db:"id"`
	QuizID    string    `db:"quiz_id"`
	Text      string    `db:"text"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

// Option mirrors the options table. IsCorrect is stored as NUMBER(1).
type Option struct {
	ID         string    `db:"id"`
	QuestionID string    `db:"question_id"`
	Text       string    `db:"text"`
	IsCorrect  int       `db:"is_correct"`
	CreatedAt  time.Time `db:"created_at"`
}

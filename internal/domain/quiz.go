package domain

import (
	"context"
	"time"
)

// Difficulty levels a quiz can be tagged with.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// ValidDifficulty reports whether s is one of the known difficulty levels.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Quiz is a category of questions a user can take in one sitting.
type Quiz struct {
	ID          string
	Title       string
	Description string
	TimeMinutes int
	Difficulty  string
	IconName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Questions is populated only when the quiz is loaded in full,
	// ordered by insertion (position).
	Questions []Question
}

// NewQuiz creates a new Quiz instance with defaults matching the schema.
func NewQuiz(title, description string, timeMinutes int, difficulty, iconName string) *Quiz {
	now := time.Now()
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	if iconName == "" {
		iconName = "FaQuestionCircle"
	}
	if timeMinutes <= 0 {
		timeMinutes = 10
	}
	return &Quiz{
		Title:       title,
		Description: description,
		TimeMinutes: timeMinutes,
		Difficulty:  difficulty,
		IconName:    iconName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the quiz.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return ValidationErrors{NewMissingFieldError("title")}
	}
	if !ValidDifficulty(q.Difficulty) {
		return ValidationErrors{NewInvalidFormatError("difficulty", q.Difficulty)}
	}
	return nil
}

// Question belongs to exactly one quiz. Options carry the correctness flag
// internally; it must never reach a client before grading (see OptionView).
type Question struct {
	ID       string
	QuizID   string
	Text     string
	Position int
	Options  []Option
}

// CorrectOption returns the single option flagged correct, or nil when the
// question has none. More than one cannot exist; the schema enforces it.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// Option is the internal projection of an answer choice, correctness
// included.
type Option struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
}

// OptionView is the client-safe projection of an Option: identity and text
// only, no correctness flag.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// View strips the option down to what clients may see before grading.
func (o *Option) View() OptionView {
	return OptionView{ID: o.ID, Text: o.Text}
}

// QuizSummary is a quiz row plus its current question count, for listings.
type QuizSummary struct {
	Quiz
	QuestionsCount int
}

// QuizRepository defines the interface for quiz data persistence.
type QuizRepository interface {
	// ListQuizzes returns all quizzes with their current question counts.
	ListQuizzes(ctx context.Context) ([]QuizSummary, error)

	// GetQuizByID returns the bare quiz row, or nil when absent.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)

	// GetQuizWithQuestions returns the quiz with its questions (insertion
	// order) and each question's options, or nil when absent.
	GetQuizWithQuestions(ctx context.Context, id string) (*Quiz, error)

	// SaveQuiz inserts the quiz with its questions and options, assigning
	// ids and timestamps.
	SaveQuiz(ctx context.Context, quiz *Quiz) error
}

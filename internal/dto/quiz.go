package dto

import (
	"quizdeck/internal/domain"
)

// QuizListItem is one dashboard card in the quiz listing.
type QuizListItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TimeMinutes    int    `json:"time_minutes"`
	Difficulty     string `json:"difficulty"`
	IconName       string `json:"icon_name"`
	QuestionsCount int    `json:"questions_count"`
}

// QuizListResponse is the response for listing quizzes.
type QuizListResponse struct {
	Quizzes []QuizListItem `json:"quizzes"`
}

// QuestionView is a question with its client-safe options, for taking a
// quiz. Option correctness is never present here.
type QuestionView struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Options []domain.OptionView `json:"options"`
}

// QuizDetailResponse is the response for fetching a single quiz to take.
type QuizDetailResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	TimeMinutes int            `json:"time_minutes"`
	Questions   []QuestionView `json:"questions"`
}

// SubmitQuizRequest carries the submitted answer map: question id to
// selected option id.
type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers"`
}

// SubmitQuizResponse is the grading outcome returned to the client,
// review trail included.
type SubmitQuizResponse struct {
	Score      int                  `json:"score"`
	Total      int                  `json:"total"`
	Percentage float64              `json:"percentage"`
	ReviewData []domain.ReviewEntry `json:"review_data"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

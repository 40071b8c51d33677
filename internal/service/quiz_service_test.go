package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"quizdeck/internal/config"
	"quizdeck/internal/domain"
	"quizdeck/internal/dto"
	"quizdeck/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMain initializes the logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "info"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

func twoQuestionQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:    "quiz1",
		Title: "Networking Basics",
		Questions: []domain.Question{
			{
				ID:     "1",
				QuizID: "quiz1",
				Text:   "Q1",
				Options: []domain.Option{
					{ID: "4", QuestionID: "1", Text: "A"},
					{ID: "5", QuestionID: "1", Text: "B", IsCorrect: true},
				},
			},
			{
				ID:     "2",
				QuizID: "quiz1",
				Text:   "Q2",
				Options: []domain.Option{
					{ID: "8", QuestionID: "2", Text: "A"},
					{ID: "9", QuestionID: "2", Text: "B", IsCorrect: true},
				},
			},
		},
	}
}

func TestSubmitQuiz_GradesAndRecordsAttempt(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := NewQuizService(quizRepo, attemptRepo)
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "quiz1").Return(twoQuestionQuiz(), nil)
	attemptRepo.On("CreateAttempt", ctx, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.UserID == "user1" && a.QuizID == "quiz1" && a.Score == 1
	})).Return(nil)

	resp, err := svc.SubmitQuiz(ctx, "user1", "quiz1", &dto.SubmitQuizRequest{
		Answers: map[string]string{"1": "5", "2": "1"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 50.0, resp.Percentage)
	require.Len(t, resp.ReviewData, 2)
	assert.True(t, resp.ReviewData[0].IsCorrect)
	assert.False(t, resp.ReviewData[1].IsCorrect)

	quizRepo.AssertExpectations(t)
	attemptRepo.AssertExpectations(t)
}

func TestSubmitQuiz_UnknownQuizRecordsNothing(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := NewQuizService(quizRepo, attemptRepo)
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "missing").Return(nil, nil)

	_, err := svc.SubmitQuiz(ctx, "user1", "missing", &dto.SubmitQuizRequest{
		Answers: map[string]string{},
	})

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
	attemptRepo.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
}

func TestSubmitQuiz_ZeroQuestionsStillRecordsAttempt(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := NewQuizService(quizRepo, attemptRepo)
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "empty").Return(&domain.Quiz{ID: "empty"}, nil)
	attemptRepo.On("CreateAttempt", ctx, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.Score == 0 && a.QuizID == "empty"
	})).Return(nil)

	resp, err := svc.SubmitQuiz(ctx, "user1", "empty", &dto.SubmitQuizRequest{
		Answers: map[string]string{"1": "5"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, 0.0, resp.Percentage)
	assert.Empty(t, resp.ReviewData)
	attemptRepo.AssertExpectations(t)
}

func TestSubmitQuiz_NilAnswersGradeAsEmpty(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := NewQuizService(quizRepo, attemptRepo)
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "quiz1").Return(twoQuestionQuiz(), nil)
	attemptRepo.On("CreateAttempt", ctx, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.Score == 0 && a.QuizID == "quiz1"
	})).Return(nil)

	// A body without an answers key grades every question as unanswered
	// and still records the attempt.
	resp, err := svc.SubmitQuiz(ctx, "user1", "quiz1", &dto.SubmitQuizRequest{})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 0.0, resp.Percentage)
	attemptRepo.AssertExpectations(t)
}

func TestGetQuizDetail_HidesCorrectness(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockAttemptRepository))
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "quiz1").Return(twoQuestionQuiz(), nil)

	resp, err := svc.GetQuizDetail(ctx, "quiz1")
	require.NoError(t, err)
	require.Len(t, resp.Questions, 2)
	// OptionView has no correctness field at all; verify ids and text
	// survived the projection.
	assert.Equal(t, []domain.OptionView{{ID: "4", Text: "A"}, {ID: "5", Text: "B"}}, resp.Questions[0].Options)
}

func TestGetQuizDetail_NotFound(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockAttemptRepository))
	ctx := context.Background()

	quizRepo.On("GetQuizWithQuestions", ctx, "missing").Return(nil, nil)

	_, err := svc.GetQuizDetail(ctx, "missing")
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
}

func TestListQuizzes(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockAttemptRepository))
	ctx := context.Background()

	quizRepo.On("ListQuizzes", ctx).Return([]domain.QuizSummary{
		{Quiz: domain.Quiz{ID: "a", Title: "First"}, QuestionsCount: 3},
		{Quiz: domain.Quiz{ID: "b", Title: "Second"}, QuestionsCount: 0},
	}, nil)

	resp, err := svc.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Quizzes, 2)
	assert.Equal(t, 3, resp.Quizzes[0].QuestionsCount)
	assert.Equal(t, "Second", resp.Quizzes[1].Title)
}

func TestGetLeaderboard_RanksAndNames(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewQuizService(new(MockQuizRepository), attemptRepo)
	ctx := context.Background()

	attemptRepo.On("GetLeaderboard", ctx, 10).Return([]domain.LeaderboardRow{
		{Username: "alice", FirstName: "Alice", LastName: "Smith", TotalScore: 42},
		{Username: "bob", TotalScore: 40},
	}, nil)

	entries, err := svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, dto.LeaderboardEntry{Rank: 1, Username: "alice", Name: "Alice Smith", Score: 42}, entries[0])
	// Display name falls back to the username when both name parts are empty.
	assert.Equal(t, dto.LeaderboardEntry{Rank: 2, Username: "bob", Name: "bob", Score: 40}, entries[1])
}

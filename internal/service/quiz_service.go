package service

import (
	"context"

	"quizdeck/internal/domain"
	"quizdeck/internal/dto"
	"quizdeck/internal/logger"
	"quizdeck/internal/validation"

	"go.uber.org/zap"
)

const leaderboardSize = 10

// QuizService defines the interface for quiz browsing, grading and the
// leaderboard.
type QuizService interface {
	ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error)
	GetQuizDetail(ctx context.Context, quizID string) (*dto.QuizDetailResponse, error)
	SubmitQuiz(ctx context.Context, userID, quizID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
	GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error)
}

type quizServiceImpl struct {
	quizRepo    domain.QuizRepository
	attemptRepo domain.AttemptRepository
	validator   *validation.Validator
}

// NewQuizService creates a new instance of QuizService.
func NewQuizService(quizRepo domain.QuizRepository, attemptRepo domain.AttemptRepository) QuizService {
	return &quizServiceImpl{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		validator:   validation.NewValidator(),
	}
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error) {
	summaries, err := s.quizRepo.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}

	items := make([]dto.QuizListItem, 0, len(summaries))
	for _, sum := range summaries {
		items = append(items, dto.QuizListItem{
			ID:             sum.ID,
			Title:          sum.Title,
			Description:    sum.Description,
			TimeMinutes:    sum.TimeMinutes,
			Difficulty:     sum.Difficulty,
			IconName:       sum.IconName,
			QuestionsCount: sum.QuestionsCount,
		})
	}
	return &dto.QuizListResponse{Quizzes: items}, nil
}

// GetQuizDetail returns a quiz ready to be taken. Options go out as the
// client-safe projection; correctness never leaves the server here.
func (s *quizServiceImpl) GetQuizDetail(ctx context.Context, quizID string) (*dto.QuizDetailResponse, error) {
	quiz, err := s.quizRepo.GetQuizWithQuestions(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	questions := make([]dto.QuestionView, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		views := make([]domain.OptionView, len(q.Options))
		for j := range q.Options {
			views[j] = q.Options[j].View()
		}
		questions = append(questions, dto.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: views,
		})
	}

	return &dto.QuizDetailResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		TimeMinutes: quiz.TimeMinutes,
		Questions:   questions,
	}, nil
}

// SubmitQuiz grades the submission and records the attempt before
// responding. Every submission appends a new attempt; retaking a quiz
// yields another row, never an update of an old one. A quiz with no
// questions still records an attempt, with score and total both zero.
func (s *quizServiceImpl) SubmitQuiz(ctx context.Context, userID, quizID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	appLogger := logger.Get()

	if errs := s.validator.ValidateSubmitQuizRequest(req); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.quizRepo.GetQuizWithQuestions(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	result := domain.GradeSubmission(quiz.Questions, req.Answers)

	attempt := &domain.QuizAttempt{
		UserID: userID,
		QuizID: quiz.ID,
		Score:  result.Score,
	}
	if err := s.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("failed to record attempt", err)
	}

	appLogger.Info("Quiz submitted",
		zap.String("userID", userID),
		zap.String("quizID", quiz.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total))

	return &dto.SubmitQuizResponse{
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
		ReviewData: result.Review,
	}, nil
}

// GetLeaderboard ranks users by their summed raw scores across all
// attempts, top ten. Order among tied totals is whatever the database
// returns.
func (s *quizServiceImpl) GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	rows, err := s.attemptRepo.GetLeaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch leaderboard", err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:     i + 1,
			Username: rows[i].Username,
			Name:     rows[i].DisplayName(),
			Score:    rows[i].TotalScore,
		})
	}
	return entries, nil
}

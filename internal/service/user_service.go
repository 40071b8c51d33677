package service

import (
	"context"
	"io"
	"math"

	"quizdeck/internal/domain"
	"quizdeck/internal/dto"
	"quizdeck/internal/logger"
	"quizdeck/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PassThresholdPercent is the minimum percentage counting as a pass.
const PassThresholdPercent = 60

// UserService defines the interface for account management, attempt
// history and per-user statistics.
type UserService interface {
	GetMe(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID string) error
	GetAvatar(ctx context.Context, userID string) (*dto.AvatarResponse, error)
	UpdateAvatar(ctx context.Context, userID, filename string, contents io.Reader) (*dto.AvatarResponse, error)
	GetHistory(ctx context.Context, userID string) ([]dto.HistoryItem, error)
	GetUserStats(ctx context.Context, userID string) (*dto.StatsResponse, error)
}

type userServiceImpl struct {
	userRepo       domain.UserRepository
	profileRepo    domain.ProfileRepository
	attemptRepo    domain.AttemptRepository
	storage        domain.FileStorage
	placeholderURL string
	validator      *validation.Validator
}

// NewUserService creates a new instance of UserService. placeholderURL is
// the avatar served for accounts that never uploaded one.
func NewUserService(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	attemptRepo domain.AttemptRepository,
	storage domain.FileStorage,
	placeholderURL string,
) UserService {
	return &userServiceImpl{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		attemptRepo:    attemptRepo,
		storage:        storage,
		placeholderURL: placeholderURL,
		validator:      validation.NewValidator(),
	}
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if other, err := s.userRepo.GetUserByEmail(ctx, *req.Email); err != nil {
			return nil, domain.NewInternalError("failed to check email", err)
		} else if other != nil && other.ID != user.ID {
			return nil, domain.NewInvalidInputError("email is already registered")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to update user", err)
	}
	return toUserResponse(user), nil
}

// ChangePassword verifies the old password before storing a hash of the
// new one.
func (s *userServiceImpl) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	appLogger := logger.Get()

	if errs := s.validator.ValidateChangePasswordRequest(req); len(errs) > 0 {
		return errs
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == "" {
		return domain.NewInvalidInputError("account has no password set")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return domain.NewWrongPasswordError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return domain.NewInternalError("failed to update password", err)
	}

	appLogger.Info("Password changed", zap.String("userID", userID))
	return nil
}

// DeleteAccount removes the user row; profile and attempts go with it via
// the schema's cascades.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	appLogger := logger.Get()

	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return domain.NewInternalError("failed to delete user", err)
	}

	appLogger.Info("Account deleted", zap.String("userID", userID))
	return nil
}

func (s *userServiceImpl) GetAvatar(ctx context.Context, userID string) (*dto.AvatarResponse, error) {
	profile, err := s.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch profile", err)
	}
	if profile == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}

	resp := &dto.AvatarResponse{Avatar: s.placeholderURL}
	if profile.AvatarPath != "" {
		resp.Avatar = s.storage.URL(profile.AvatarPath)
	}
	return resp, nil
}

// UpdateAvatar stores the uploaded image and points the profile at it. The
// previous image, if any, is removed after the profile row is updated.
func (s *userServiceImpl) UpdateAvatar(ctx context.Context, userID, filename string, contents io.Reader) (*dto.AvatarResponse, error) {
	appLogger := logger.Get()

	profile, err := s.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch profile", err)
	}
	if profile == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}

	// Prefix with the user id so uploads from different users never
	// collide on filename.
	path, err := s.storage.Save(ctx, userID+"_"+filename, contents)
	if err != nil {
		return nil, domain.NewInternalError("failed to store avatar", err)
	}

	if err := s.profileRepo.UpdateAvatar(ctx, userID, path); err != nil {
		if removeErr := s.storage.Remove(ctx, path); removeErr != nil {
			appLogger.Warn("Failed to clean up orphaned avatar",
				zap.String("path", path), zap.Error(removeErr))
		}
		return nil, domain.NewInternalError("failed to update avatar", err)
	}

	if old := profile.AvatarPath; old != "" && old != path {
		if err := s.storage.Remove(ctx, old); err != nil {
			appLogger.Warn("Failed to remove previous avatar",
				zap.String("path", old), zap.Error(err))
		}
	}

	return &dto.AvatarResponse{Avatar: s.storage.URL(path)}, nil
}

// GetHistory lists the user's attempts, most recent first. Each row's
// percentage is recomputed from the quiz's CURRENT question count; editing
// a quiz therefore shifts historical percentages. Inherited behavior, kept
// deliberately (see DESIGN.md).
func (s *userServiceImpl) GetHistory(ctx context.Context, userID string) ([]dto.HistoryItem, error) {
	attempts, err := s.attemptRepo.GetAttemptsByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch history", err)
	}

	items := make([]dto.HistoryItem, 0, len(attempts))
	for _, a := range attempts {
		percentage := 0
		if a.QuestionCount > 0 {
			percentage = int(math.Round(float64(a.Score) / float64(a.QuestionCount) * 100))
		}
		status := "Failed"
		if percentage >= PassThresholdPercent {
			status = "Passed"
		}
		items = append(items, dto.HistoryItem{
			ID:             a.ID,
			QuizTitle:      a.QuizTitle,
			Score:          a.Score,
			TotalQuestions: a.QuestionCount,
			Percentage:     percentage,
			Date:           a.CompletedAt,
			Status:         status,
		})
	}
	return items, nil
}

// GetUserStats aggregates the user's attempts on demand. Attempts on
// quizzes that currently have zero questions count toward the total but
// are excluded from the average and the pass count denominator.
func (s *userServiceImpl) GetUserStats(ctx context.Context, userID string) (*dto.StatsResponse, error) {
	attempts, err := s.attemptRepo.GetAttemptsByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch attempts", err)
	}

	stats := &dto.StatsResponse{TotalQuizzes: len(attempts)}

	var sum float64
	var valid int
	for _, a := range attempts {
		if a.QuestionCount <= 0 {
			continue
		}
		percentage := float64(a.Score) / float64(a.QuestionCount) * 100
		sum += percentage
		valid++
		if percentage >= PassThresholdPercent {
			stats.PassedQuizzes++
		}
	}
	if valid > 0 {
		stats.AverageScore = int(math.Round(sum / float64(valid)))
	}
	return stats, nil
}

func (s *userServiceImpl) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	return user, nil
}

func toUserResponse(user *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quizdeck/internal/domain"
	"quizdeck/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPlaceholderURL = "https://placehold.co/150"

func attempt(score, questionCount int, title string) domain.AttemptWithQuiz {
	return domain.AttemptWithQuiz{
		QuizAttempt: domain.QuizAttempt{
			ID:          "attempt-" + title,
			UserID:      "user1",
			Score:       score,
			CompletedAt: time.Now(),
		},
		QuizTitle:     title,
		QuestionCount: questionCount,
	}
}

func TestGetUserStats(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewUserService(new(MockUserRepository), new(MockProfileRepository), attemptRepo, new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	// 4/5 = 80% (pass), 1/4 = 25% (fail), 3/5 = 60% (pass, threshold is
	// inclusive), and one attempt on a quiz whose questions were all
	// deleted: counts toward the total but not the average.
	attemptRepo.On("GetAttemptsByUserID", ctx, "user1").Return([]domain.AttemptWithQuiz{
		attempt(4, 5, "a"),
		attempt(1, 4, "b"),
		attempt(3, 5, "c"),
		attempt(2, 0, "gutted"),
	}, nil)

	stats, err := svc.GetUserStats(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalQuizzes)
	assert.Equal(t, 2, stats.PassedQuizzes)
	// (80 + 25 + 60) / 3 = 55
	assert.Equal(t, 55, stats.AverageScore)
}

func TestGetUserStats_NoAttempts(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewUserService(new(MockUserRepository), new(MockProfileRepository), attemptRepo, new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	attemptRepo.On("GetAttemptsByUserID", ctx, "user1").Return([]domain.AttemptWithQuiz{}, nil)

	stats, err := svc.GetUserStats(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, &dto.StatsResponse{}, stats)
}

func TestGetUserStats_OnlyZeroQuestionAttempts(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewUserService(new(MockUserRepository), new(MockProfileRepository), attemptRepo, new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	attemptRepo.On("GetAttemptsByUserID", ctx, "user1").Return([]domain.AttemptWithQuiz{
		attempt(0, 0, "a"),
		attempt(0, 0, "b"),
	}, nil)

	stats, err := svc.GetUserStats(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalQuizzes)
	assert.Equal(t, 0, stats.AverageScore)
	assert.Equal(t, 0, stats.PassedQuizzes)
}

func TestGetHistory(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := NewUserService(new(MockUserRepository), new(MockProfileRepository), attemptRepo, new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	attemptRepo.On("GetAttemptsByUserID", ctx, "user1").Return([]domain.AttemptWithQuiz{
		attempt(3, 5, "Networking"), // 60% -> Passed
		attempt(1, 3, "Databases"),  // 33% -> Failed
		attempt(0, 0, "Gutted"),     // no questions -> 0%, Failed
	}, nil)

	items, err := svc.GetHistory(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Networking", items[0].QuizTitle)
	assert.Equal(t, 60, items[0].Percentage)
	assert.Equal(t, "Passed", items[0].Status)

	assert.Equal(t, 33, items[1].Percentage)
	assert.Equal(t, "Failed", items[1].Status)

	assert.Equal(t, 0, items[2].Percentage)
	assert.Equal(t, 0, items[2].TotalQuestions)
	assert.Equal(t, "Failed", items[2].Status)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("old-secret-1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: "user1", Username: "jdoe", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockProfileRepository), new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)

		userRepo.On("GetUserByID", ctx, "user1").Return(user, nil)
		userRepo.On("UpdatePassword", ctx, "user1", mock.MatchedBy(func(h string) bool {
			return bcrypt.CompareHashAndPassword([]byte(h), []byte("new-secret-1")) == nil
		})).Return(nil)

		err := svc.ChangePassword(ctx, "user1", &dto.ChangePasswordRequest{
			OldPassword: "old-secret-1",
			NewPassword: "new-secret-1",
		})
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockProfileRepository), new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)

		userRepo.On("GetUserByID", ctx, "user1").Return(user, nil)

		err := svc.ChangePassword(ctx, "user1", &dto.ChangePasswordRequest{
			OldPassword: "not-the-old-one",
			NewPassword: "new-secret-1",
		})
		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeWrongPassword, domainErr.Code)
		userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("weak new password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockProfileRepository), new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)

		err := svc.ChangePassword(ctx, "user1", &dto.ChangePasswordRequest{
			OldPassword: "old-secret-1",
			NewPassword: "12345678",
		})
		_, ok := err.(domain.ValidationErrors)
		assert.True(t, ok)
		userRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockProfileRepository), new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	userRepo.On("GetUserByID", ctx, "user1").Return(&domain.User{ID: "user1", Username: "jdoe"}, nil)
	userRepo.On("GetUserByEmail", ctx, "taken@example.com").Return(&domain.User{ID: "other"}, nil)

	email := "taken@example.com"
	_, err := svc.UpdateUser(ctx, "user1", &dto.UpdateUserRequest{Email: &email})
	require.Error(t, err)
	userRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestUpdateAvatar(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)
	storage := new(MockFileStorage)
	svc := NewUserService(userRepo, profileRepo, new(MockAttemptRepository), storage, testPlaceholderURL)
	ctx := context.Background()

	profileRepo.On("GetProfileByUserID", ctx, "user1").Return(&domain.UserProfile{
		ID: "p1", UserID: "user1", AvatarPath: "user1_old.png",
	}, nil)
	storage.On("Save", ctx, "user1_new.png", mock.Anything).Return("user1_new.png", nil)
	profileRepo.On("UpdateAvatar", ctx, "user1", "user1_new.png").Return(nil)
	storage.On("Remove", ctx, "user1_old.png").Return(nil)
	storage.On("URL", "user1_new.png").Return("http://localhost:8090/media/user1_new.png")

	resp, err := svc.UpdateAvatar(ctx, "user1", "new.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090/media/user1_new.png", resp.Avatar)
	storage.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestGetAvatar_PlaceholderWhenUnset(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewUserService(new(MockUserRepository), profileRepo, new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	profileRepo.On("GetProfileByUserID", ctx, "user1").Return(&domain.UserProfile{ID: "p1", UserID: "user1"}, nil)

	resp, err := svc.GetAvatar(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, testPlaceholderURL, resp.Avatar)
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockProfileRepository), new(MockAttemptRepository), new(MockFileStorage), testPlaceholderURL)
	ctx := context.Background()

	userRepo.On("GetUserByID", ctx, "ghost").Return(nil, nil)

	err := svc.DeleteAccount(ctx, "ghost")
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeUserNotFound, domainErr.Code)
	userRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

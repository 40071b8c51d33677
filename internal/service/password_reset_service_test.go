package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"quizdeck/internal/config"
	"quizdeck/internal/domain"
	"quizdeck/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testResetConfig() *config.Config {
	return &config.Config{
		Reset: config.ResetConfig{
			TokenTTL:    time.Hour,
			LinkBaseURL: "http://localhost:5173/reset-password",
		},
	}
}

func TestRequestReset_KnownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenStore := new(MockTokenStore)
	mailer := new(MockEmailSender)
	svc := NewPasswordResetService(userRepo, tokenStore, mailer, testResetConfig())
	ctx := context.Background()

	user := &domain.User{ID: "user1", Username: "jdoe", Email: "jdoe@example.com"}
	userRepo.On("GetUserByEmail", ctx, "jdoe@example.com").Return(user, nil)

	var savedToken string
	tokenStore.On("Save", ctx, "user1", mock.AnythingOfType("string"), time.Hour).
		Run(func(args mock.Arguments) { savedToken = args.String(2) }).
		Return(nil)
	mailer.On("Send", ctx, "jdoe@example.com", "Reset your password", mock.AnythingOfType("string")).Return(nil)

	err := svc.RequestReset(ctx, &dto.PasswordResetRequest{Email: "jdoe@example.com"})
	require.NoError(t, err)

	// The mailed link must carry the base64url uid and the stored token.
	body := mailer.Calls[0].Arguments.String(3)
	uid := base64.RawURLEncoding.EncodeToString([]byte("user1"))
	assert.Contains(t, body, "uid="+uid)
	assert.Contains(t, body, "token="+savedToken)
	assert.NotEmpty(t, savedToken)
	tokenStore.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRequestReset_UnknownEmailSendsNothing(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenStore := new(MockTokenStore)
	mailer := new(MockEmailSender)
	svc := NewPasswordResetService(userRepo, tokenStore, mailer, testResetConfig())
	ctx := context.Background()

	userRepo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, nil)

	// Succeeds anyway so the endpoint cannot enumerate accounts.
	err := svc.RequestReset(ctx, &dto.PasswordResetRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	tokenStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmReset_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenStore := new(MockTokenStore)
	svc := NewPasswordResetService(userRepo, tokenStore, new(MockEmailSender), testResetConfig())
	ctx := context.Background()

	uid := base64.RawURLEncoding.EncodeToString([]byte("user1"))
	tokenStore.On("Consume", ctx, "user1", "tok123").Return(nil)
	userRepo.On("GetUserByID", ctx, "user1").Return(&domain.User{ID: "user1"}, nil)
	userRepo.On("UpdatePassword", ctx, "user1", mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("fresh-secret-1")) == nil
	})).Return(nil)

	err := svc.ConfirmReset(ctx, &dto.PasswordResetConfirmRequest{
		UID:         uid,
		Token:       "tok123",
		NewPassword: "fresh-secret-1",
	})
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestConfirmReset_FailuresCollapseToInvalidLink(t *testing.T) {
	ctx := context.Background()
	uid := base64.RawURLEncoding.EncodeToString([]byte("user1"))

	t.Run("malformed uid", func(t *testing.T) {
		svc := NewPasswordResetService(new(MockUserRepository), new(MockTokenStore), new(MockEmailSender), testResetConfig())

		err := svc.ConfirmReset(ctx, &dto.PasswordResetConfirmRequest{
			UID: "%%%not-base64%%%", Token: "tok", NewPassword: "fresh-secret-1",
		})
		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeInvalidLink, domainErr.Code)
	})

	t.Run("consumed or expired token", func(t *testing.T) {
		tokenStore := new(MockTokenStore)
		svc := NewPasswordResetService(new(MockUserRepository), tokenStore, new(MockEmailSender), testResetConfig())
		tokenStore.On("Consume", ctx, "user1", "tok").Return(domain.ErrTokenNotFound)

		err := svc.ConfirmReset(ctx, &dto.PasswordResetConfirmRequest{
			UID: uid, Token: "tok", NewPassword: "fresh-secret-1",
		})
		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeInvalidLink, domainErr.Code)
	})

	t.Run("user deleted since the mail went out", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tokenStore := new(MockTokenStore)
		svc := NewPasswordResetService(userRepo, tokenStore, new(MockEmailSender), testResetConfig())
		tokenStore.On("Consume", ctx, "user1", "tok").Return(nil)
		userRepo.On("GetUserByID", ctx, "user1").Return(nil, nil)

		err := svc.ConfirmReset(ctx, &dto.PasswordResetConfirmRequest{
			UID: uid, Token: "tok", NewPassword: "fresh-secret-1",
		})
		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeInvalidLink, domainErr.Code)
	})
}

func TestConfirmReset_WeakPasswordCheckedFirst(t *testing.T) {
	tokenStore := new(MockTokenStore)
	svc := NewPasswordResetService(new(MockUserRepository), tokenStore, new(MockEmailSender), testResetConfig())

	err := svc.ConfirmReset(context.Background(), &dto.PasswordResetConfirmRequest{
		UID:         base64.RawURLEncoding.EncodeToString([]byte("user1")),
		Token:       "tok",
		NewPassword: "123",
	})
	_, ok := err.(domain.ValidationErrors)
	assert.True(t, ok)
	// The token must survive a weak-password attempt so the user can retry.
	tokenStore.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

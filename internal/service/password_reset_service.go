package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"quizdeck/internal/config"
	"quizdeck/internal/domain"
	"quizdeck/internal/dto"
	"quizdeck/internal/logger"
	"quizdeck/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 32

// PasswordResetService drives the forgot-password flow: mailing a
// single-use link and redeeming it.
type PasswordResetService interface {
	RequestReset(ctx context.Context, req *dto.PasswordResetRequest) error
	ConfirmReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error
}

type passwordResetServiceImpl struct {
	userRepo   domain.UserRepository
	tokenStore domain.TokenStore
	mailer     domain.EmailSender
	validator  *validation.Validator
	appConfig  *config.Config
}

// NewPasswordResetService creates a new instance of PasswordResetService.
func NewPasswordResetService(
	userRepo domain.UserRepository,
	tokenStore domain.TokenStore,
	mailer domain.EmailSender,
	appConfig *config.Config,
) PasswordResetService {
	return &passwordResetServiceImpl{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		mailer:     mailer,
		validator:  validation.NewValidator(),
		appConfig:  appConfig,
	}
}

// RequestReset mails a reset link when the email belongs to an account.
// It reports success either way so the endpoint cannot be used to probe
// which emails are registered.
func (s *passwordResetServiceImpl) RequestReset(ctx context.Context, req *dto.PasswordResetRequest) error {
	appLogger := logger.Get()

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return domain.NewInternalError("failed to fetch user", err)
	}
	if user == nil {
		appLogger.Info("Password reset requested for unknown email")
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return domain.NewInternalError("failed to generate reset token", err)
	}
	if err := s.tokenStore.Save(ctx, user.ID, token, s.appConfig.Reset.TokenTTL); err != nil {
		return domain.NewInternalError("failed to store reset token", err)
	}

	uid := base64.RawURLEncoding.EncodeToString([]byte(user.ID))
	link := fmt.Sprintf("%s?uid=%s&token=%s", s.appConfig.Reset.LinkBaseURL, uid, token)
	body := fmt.Sprintf(
		"Hello %s,\n\nUse the link below to reset your password. It expires in %s and works once.\n\n%s\n\nIf you did not request this, ignore this email.\n",
		user.DisplayName(), s.appConfig.Reset.TokenTTL, link)

	if err := s.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		return domain.NewInternalError("failed to send reset email", err)
	}

	appLogger.Info("Password reset link sent", zap.String("userID", user.ID))
	return nil
}

// ConfirmReset redeems a reset link. Every failure mode past password
// validation collapses into the same "invalid link" error so the response
// never reveals which part of the link was wrong.
func (s *passwordResetServiceImpl) ConfirmReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	appLogger := logger.Get()

	if errs := s.validator.ValidatePassword("new_password", req.NewPassword); len(errs) > 0 {
		return errs
	}

	userIDBytes, err := base64.RawURLEncoding.DecodeString(req.UID)
	if err != nil {
		return domain.NewInvalidLinkError(err)
	}
	userID := string(userIDBytes)

	if err := s.tokenStore.Consume(ctx, userID, req.Token); err != nil {
		return domain.NewInvalidLinkError(err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.NewInternalError("failed to fetch user", err)
	}
	if user == nil {
		return domain.NewInvalidLinkError(nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return domain.NewInternalError("failed to update password", err)
	}

	appLogger.Info("Password reset completed", zap.String("userID", user.ID))
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package handler

import (
	"quizdeck/internal/dto"
	"quizdeck/internal/logger"
	"quizdeck/internal/middleware"
	"quizdeck/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe retrieves the account of the currently authenticated user.
// @Summary Get my account
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	resp, err := h.userService.GetMe(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateMe updates the caller's editable account fields.
// @Summary Update my account
// @Description Updates email and name. Absent fields are left unchanged.
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} middleware.ErrorResponse "Email already registered"
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_REQUEST_BODY", Message: "Invalid request body", Status: fiber.StatusBadRequest,
		})
	}

	resp, err := h.userService.UpdateUser(c.Context(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ChangePassword changes the caller's password.
// @Summary Change my password
// @Description Requires the current password; the new one must meet the strength rules.
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse "Wrong old password or weak new password"
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_REQUEST_BODY", Message: "Invalid request body", Status: fiber.StatusBadRequest,
		})
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password changed"})
}

// DeleteMe deletes the caller's account, profile and attempts.
// @Summary Delete my account
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	if err := h.userService.DeleteAccount(c.Context(), userID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Account deleted"})
}

// GetAvatar returns the caller's avatar URL, or the placeholder when
// none is set.
// @Summary Get my avatar
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.AvatarResponse
// @Router /users/me/avatar [get]
func (h *UserHandler) GetAvatar(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	resp, err := h.userService.GetAvatar(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateAvatar uploads a new avatar image.
// @Summary Upload my avatar
// @Description Accepts a multipart form with an "avatar" file field.
// @Tags users
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} dto.AvatarResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing or unreadable file"
// @Router /users/me/avatar [patch]
func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "MISSING_AVATAR_FILE", Message: "Multipart field 'avatar' is required", Status: fiber.StatusBadRequest,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		appLogger.Error("Failed to open uploaded avatar", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "UNREADABLE_AVATAR_FILE", Message: "Uploaded file could not be read", Status: fiber.StatusBadRequest,
		})
	}
	defer file.Close()

	resp, err := h.userService.UpdateAvatar(c.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetHistory lists the caller's attempts, most recent first.
// @Summary Get my attempt history
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.HistoryItem
// @Router /history [get]
func (h *UserHandler) GetHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	items, err := h.userService.GetHistory(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GetStats aggregates the caller's attempt history.
// @Summary Get my statistics
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /user/stats [get]
func (h *UserHandler) GetStats(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return unauthorizedContext(c)
	}

	stats, err := h.userService.GetUserStats(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func unauthorizedContext(c *fiber.Ctx) error {
	logger.Get().Warn("User ID not found in context", zap.String("path", c.Path()))
	return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
		Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
	})
}

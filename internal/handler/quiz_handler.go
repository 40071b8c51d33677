package handler

import (
	"quizdeck/internal/dto"
	"quizdeck/internal/middleware"
	"quizdeck/internal/service"

	"github.com/gofiber/fiber/v2"
)

type QuizHandler struct {
	quizService service.QuizService
}

func NewQuizHandler(quizService service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// currentUserID pulls the authenticated user's id set by the auth
// middleware. An empty result means the route was wired without Protected.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	return userID
}

// ListQuizzes lists all quizzes.
// @Summary List quizzes
// @Description Returns all quizzes with their current question counts.
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	resp, err := h.quizService.ListQuizzes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz fetches one quiz to take.
// @Summary Get a quiz
// @Description Returns the quiz with its questions and answer options. Option correctness is never included.
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizDetailResponse
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.quizService.GetQuizDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitQuiz grades a submission and records the attempt.
// @Summary Submit quiz answers
// @Description Grades the answer map server-side, records an attempt and returns the score with a review trail.
// @Tags quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param body body dto.SubmitQuizRequest true "Answer map: question id to selected option id"
// @Success 200 {object} dto.SubmitQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Malformed submission"
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_REQUEST_BODY", Message: "Invalid request body", Status: fiber.StatusBadRequest,
		})
	}

	resp, err := h.quizService.SubmitQuiz(c.Context(), userID, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetLeaderboard returns the ranked top ten.
// @Summary Get the leaderboard
// @Description Top ten users by total score summed across all their attempts.
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.LeaderboardEntry
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /leaderboard [get]
func (h *QuizHandler) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := h.quizService.GetLeaderboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

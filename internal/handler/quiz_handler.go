package handler

import (
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GetState handles GET /api/state
func (h *QuizHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.service.State(c.UserContext()))
}

// UpdateSettings handles PUT /api/settings
func (h *QuizHandler) UpdateSettings(c *fiber.Ctx) error {
	req, ok := middleware.ValidatedBody[dto.UpdateSettingsRequest](c)
	if !ok {
		return domain.NewInternalError("validated request body missing", nil)
	}

	settings, err := h.service.UpdateSettings(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

// StartQuiz handles POST /api/quiz/start
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	state, err := h.service.Start(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

// Pick handles POST /api/quiz/pick
func (h *QuizHandler) Pick(c *fiber.Ctx) error {
	req, ok := middleware.ValidatedBody[dto.PickRequest](c)
	if !ok {
		return domain.NewInternalError("validated request body missing", nil)
	}

	resp, err := h.service.Pick(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ReviewWrong handles POST /api/quiz/review
func (h *QuizHandler) ReviewWrong(c *fiber.Ctx) error {
	state, err := h.service.ReviewWrong(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

// BackToSetup handles POST /api/quiz/setup
func (h *QuizHandler) BackToSetup(c *fiber.Ctx) error {
	return c.JSON(h.service.BackToSetup(c.UserContext()))
}

// GetResult handles GET /api/quiz/result
func (h *QuizHandler) GetResult(c *fiber.Ctx) error {
	result, err := h.service.Result(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetBank handles GET /api/bank
func (h *QuizHandler) GetBank(c *fiber.Ctx) error {
	return c.JSON(h.service.Bank(c.UserContext()))
}

// ImportBank handles POST /api/bank/import with a multipart "file" field.
func (h *QuizHandler) ImportBank(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	f, err := fh.Open()
	if err != nil {
		logger.Get().Error("Failed to open uploaded file", zap.String("file", fh.Filename), zap.Error(err))
		return domain.NewImportError("failed to read the uploaded file", err)
	}
	defer f.Close()

	resp, err := h.service.ImportBank(c.UserContext(), fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ResetBank handles POST /api/bank/reset
func (h *QuizHandler) ResetBank(c *fiber.Ctx) error {
	summary, err := h.service.ResetBank(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetProfile handles GET /api/profile
func (h *QuizHandler) GetProfile(c *fiber.Ctx) error {
	return c.JSON(h.service.Profile(c.UserContext()))
}

// Health handles GET /health
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	resp := h.service.Health(c.UserContext())
	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

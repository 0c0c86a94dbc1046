package handler

import (
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the quiz API under /api and the health check.
func RegisterRoutes(app *fiber.App, h *QuizHandler) {
	vm := middleware.NewValidationMiddleware()

	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Get("/state", h.GetState)
	api.Put("/settings", middleware.ValidateBody[dto.UpdateSettingsRequest](vm), h.UpdateSettings)
	api.Get("/profile", h.GetProfile)

	quiz := api.Group("/quiz")
	quiz.Post("/start", h.StartQuiz)
	quiz.Post("/pick", middleware.ValidateBody[dto.PickRequest](vm), h.Pick)
	quiz.Post("/review", h.ReviewWrong)
	quiz.Post("/setup", h.BackToSetup)
	quiz.Get("/result", h.GetResult)

	api.Get("/bank", h.GetBank)
	api.Post("/bank/import", h.ImportBank)
	api.Post("/bank/reset", h.ResetBank)
}

package handler_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"
	"vocab-quiz/internal/adapter"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/clock"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/handler"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceApp(t *testing.T) *fiber.App {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store, err := adapter.NewFileStoreAdapter(filepath.Join(t.TempDir(), "profile.json"))
	require.NoError(t, err)

	svc, err := service.NewQuizService(context.Background(), service.QuizDeps{
		Bank:     repository.NewBankMemoryAdapter(bank.DefaultRaw()),
		Profiles: service.NewProfileService(store, clk.Now),
		Clock:    clk,
		Defaults: config.QuizConfig{
			Levels:        []int{1, 2, 3},
			QuestionCount: 10,
			TimerMinutes:  5,
			FrameInterval: clock.DefaultFrameInterval,
		},
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.NewQuizHandler(svc))
	return app
}

func TestUpdateSettings_OutOfRangeValuesAreClamped(t *testing.T) {
	tests := []struct {
		name          string
		body          map[string]interface{}
		expectedCount float64
		expectedTimer float64
	}{
		{"zero question count", map[string]interface{}{"question_count": 0}, 5, 5},
		{"negative question count", map[string]interface{}{"question_count": -3}, 5, 5},
		{"small question count", map[string]interface{}{"question_count": 2}, 5, 5},
		{"zero timer minutes", map[string]interface{}{"timer_minutes": 0}, 10, 1},
		{"huge timer minutes", map[string]interface{}{"timer_minutes": 500}, 10, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, setupServiceApp(t), http.MethodPut, "/api/settings", tt.body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.expectedCount, body["question_count"])
			assert.Equal(t, tt.expectedTimer, body["timer_minutes"])
		})
	}
}

package dto

import (
	"vocab-quiz/internal/domain"
)

// SettingsResponse is the setup-screen configuration of the next round.
type SettingsResponse struct {
	Levels        []int `json:"levels"`
	QuestionCount int   `json:"question_count"`
	UseImages     bool  `json:"use_images"`
	UseTimer      bool  `json:"use_timer"`
	TimerMinutes  int   `json:"timer_minutes"`
}

// UpdateSettingsRequest changes only the fields that are present.
// Out-of-range counts and timer lengths are clamped by the service.
type UpdateSettingsRequest struct {
	Levels        []int `json:"levels" validate:"omitempty,dive,gte=1"`
	QuestionCount *int  `json:"question_count"`
	UseImages     *bool `json:"use_images"`
	UseTimer      *bool `json:"use_timer"`
	TimerMinutes  *int  `json:"timer_minutes"`
}

// PickRequest is the option chosen for the current question.
type PickRequest struct {
	Option string `json:"option" validate:"required"`
}

// OptionView is one answer button. ImageURL is filled only when images are enabled.
type OptionView struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// QuestionView is the current question without its answer.
type QuestionView struct {
	Prompt   string       `json:"prompt"`
	ImageURL string       `json:"image_url,omitempty"`
	Level    int          `json:"level"`
	Options  []OptionView `json:"options"`
}

// TimerView reports the session countdown in milliseconds.
type TimerView struct {
	Enabled     bool  `json:"enabled"`
	TotalMs     int64 `json:"total_ms"`
	RemainingMs int64 `json:"remaining_ms"`
}

// StateResponse is everything the client needs to render the current screen.
type StateResponse struct {
	SessionID string           `json:"session_id,omitempty"`
	Step      domain.Step      `json:"step"`
	Index     int              `json:"index"`
	Total     int              `json:"total"`
	Question  *QuestionView    `json:"question,omitempty"`
	Answers   []domain.Answer  `json:"answers"`
	Score     int              `json:"score"`
	Streak    int              `json:"streak"`
	Progress  int              `json:"progress"`
	Celebrate bool             `json:"celebrate"`
	Advancing bool             `json:"advancing"`
	Review    bool             `json:"review"`
	Timer     TimerView        `json:"timer"`
	Settings  SettingsResponse `json:"settings"`
	Bank      BankSummary      `json:"bank"`
	Level     domain.LevelInfo `json:"level"`
}

// BankSummary counts the active bank and the part selected by the levels.
type BankSummary struct {
	Total    int   `json:"total"`
	Filtered int   `json:"filtered"`
	Levels   []int `json:"levels"`
}

// BankResponse lists the active bank.
type BankResponse struct {
	BankSummary
	Records []domain.QuestionRecord `json:"records"`
}

// ImportResponse reports a successful import.
type ImportResponse struct {
	Imported int         `json:"imported"`
	Rows     int         `json:"rows"`
	Dropped  int         `json:"dropped"`
	Bank     BankSummary `json:"bank"`
}

// PickResponse is the immediate feedback for a pick.
type PickResponse struct {
	Accepted bool          `json:"accepted"`
	Correct  bool          `json:"correct"`
	Answer   string        `json:"answer,omitempty"`
	Streak   int           `json:"streak"`
	Last     bool          `json:"last"`
	State    StateResponse `json:"state"`
}

// ResultResponse is the result screen: the finished round and, once the
// profile has been updated, what the round earned.
type ResultResponse struct {
	Round       domain.RoundResult `json:"round"`
	RemainingMs int64              `json:"remaining_ms"`
	Award       *domain.RoundAward `json:"award,omitempty"`
	Profile     ProfileResponse    `json:"profile"`
}

// ProfileResponse is the persisted profile with its derived level.
type ProfileResponse struct {
	Profile domain.Profile   `json:"profile"`
	Level   domain.LevelInfo `json:"level"`
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

package quiz

import (
	"time"
	"vocab-quiz/internal/domain"
)

// MinQuestions is the smallest round the setup screen allows.
const MinQuestions = 5

// State is a read-only view of the machine for rendering.
type State struct {
	SessionID    string               `json:"session_id,omitempty"`
	Step         domain.Step          `json:"step"`
	Total        int                  `json:"total"`
	Index        int                  `json:"index"`
	Question     *domain.QuizQuestion `json:"question,omitempty"`
	Answers      []domain.Answer      `json:"answers"`
	Score        int                  `json:"score"`
	Streak       int                  `json:"streak"`
	Progress     int                  `json:"progress"`
	Celebrate    bool                 `json:"celebrate"`
	Advancing    bool                 `json:"advancing"`
	Review       bool                 `json:"review"`
	TimerEnabled bool                 `json:"timer_enabled"`
	Remaining    time.Duration        `json:"-"`
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		SessionID:    m.id,
		Step:         m.step,
		Total:        len(m.quiz),
		Index:        m.current,
		Answers:      make([]domain.Answer, len(m.answers)),
		Streak:       m.streak,
		Celebrate:    m.celebrate,
		Advancing:    m.advancing,
		Review:       m.review,
		TimerEnabled: m.timerEnabled,
	}
	copy(s.Answers, m.answers)
	for _, a := range m.answers {
		if a.IsCorrect() {
			s.Score++
		}
	}
	s.Progress = domain.Percent(m.current, len(m.quiz))

	if m.step == domain.StepPlaying && m.current < len(m.quiz) {
		q := m.quiz[m.current]
		q.Options = append([]string(nil), q.Options...)
		s.Question = &q
	}
	if m.timer != nil {
		s.Remaining = m.timer.Remaining()
		if m.result != nil {
			s.Remaining = m.result.Remaining
		}
	}
	return s
}

// ClampQuestionCount bounds a requested round size to [MinQuestions, available].
// When fewer than MinQuestions records are available the round uses all of them.
func ClampQuestionCount(requested, available int) int {
	n := requested
	if n < MinQuestions {
		n = MinQuestions
	}
	if n > available {
		n = available
	}
	if n < 0 {
		n = 0
	}
	return n
}

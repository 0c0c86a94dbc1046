package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
	"vocab-quiz/internal/clock"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quizFixture struct {
	ctx  context.Context
	clk  *clock.Manual
	repo *MockBankRepository
	kv   *memoryKV
	svc  QuizService
}

func defaultQuizConfig() config.QuizConfig {
	return config.QuizConfig{
		Levels:        []int{1, 2, 3},
		QuestionCount: 10,
		TimerMinutes:  5,
		FrameInterval: clock.DefaultFrameInterval,
	}
}

func newQuizFixture(t *testing.T, stored []domain.RawRecord, checks map[string]HealthCheck) *quizFixture {
	t.Helper()
	f := &quizFixture{
		ctx:  context.Background(),
		clk:  clock.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		repo: new(MockBankRepository),
		kv:   newMemoryKV(),
	}
	f.repo.On("Load", mock.Anything).Return(stored, nil).Once()

	ids := 0
	svc, err := NewQuizService(f.ctx, QuizDeps{
		Bank:     f.repo,
		Profiles: NewProfileService(f.kv, f.clk.Now),
		Clock:    f.clk,
		Defaults: defaultQuizConfig(),
		Checks:   checks,
		Rand:     rand.New(rand.NewSource(3)),
		NewID: func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		},
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

// answerFor looks up the correct answer of the current question.
func (f *quizFixture) answerFor(t *testing.T, state dto.StateResponse) string {
	t.Helper()
	require.NotNil(t, state.Question)
	for _, r := range f.svc.Bank(f.ctx).Records {
		if r.Prompt == state.Question.Prompt {
			return r.Answer
		}
	}
	t.Fatalf("prompt %q not in bank", state.Question.Prompt)
	return ""
}

func (f *quizFixture) pick(t *testing.T, correct bool) *dto.PickResponse {
	t.Helper()
	state := f.svc.State(f.ctx)
	answer := f.answerFor(t, state)
	option := answer
	if !correct {
		for _, o := range state.Question.Options {
			if o.Text != answer {
				option = o.Text
				break
			}
		}
	}
	resp, err := f.svc.Pick(f.ctx, &dto.PickRequest{Option: option})
	require.NoError(t, err)
	require.True(t, resp.Accepted)
	f.clk.Advance(quiz.FeedbackDelay)
	return resp
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func csvBank(n int, withImages bool) string {
	var b strings.Builder
	b.WriteString("zh,en,img,level\n")
	for i := 0; i < n; i++ {
		img := ""
		if withImages {
			img = fmt.Sprintf("https://img.example/%d.png", i)
		}
		fmt.Fprintf(&b, "詞%d,word%d,%s,1\n", i, i, img)
	}
	return b.String()
}

func TestQuizService_EmptyRepositoryUsesDefaultBank(t *testing.T) {
	f := newQuizFixture(t, nil, nil)

	bank := f.svc.Bank(f.ctx)
	assert.Equal(t, 35, bank.Total)
	assert.Equal(t, 35, bank.Filtered)
	assert.Equal(t, []int{1, 2}, bank.Levels)

	state := f.svc.State(f.ctx)
	assert.Equal(t, domain.StepSetup, state.Step)
	assert.Equal(t, 10, state.Settings.QuestionCount)
	assert.Equal(t, 1, state.Level.Level)
	assert.Equal(t, int64(5*60*1000), state.Timer.TotalMs)
}

func TestQuizService_StoredBankIsNormalized(t *testing.T) {
	f := newQuizFixture(t, []domain.RawRecord{
		{Prompt: " 貓 ", Answer: "cat", Level: "2"},
		{Prompt: "貓", Answer: "CAT", Level: 1},
		{Prompt: "", Answer: "dog", Level: 1},
	}, nil)

	bank := f.svc.Bank(f.ctx)
	require.Len(t, bank.Records, 1)
	assert.Equal(t, domain.QuestionRecord{Prompt: "貓", Answer: "cat", Level: 2}, bank.Records[0])
}

func TestQuizService_LoadFailure(t *testing.T) {
	repo := new(MockBankRepository)
	repo.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewQuizService(context.Background(), QuizDeps{
		Bank:     repo,
		Profiles: NewProfileService(newMemoryKV(), nil),
		Clock:    clock.NewManual(time.Now()),
		Defaults: defaultQuizConfig(),
	})

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
}

func TestQuizService_UpdateSettingsClamps(t *testing.T) {
	f := newQuizFixture(t, nil, nil)

	got, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{QuestionCount: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, quiz.MinQuestions, got.QuestionCount)

	got, err = f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{
		Levels:        []int{2, 2},
		QuestionCount: intPtr(50),
		TimerMinutes:  intPtr(100),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got.Levels)
	assert.Equal(t, 7, got.QuestionCount)
	assert.Equal(t, config.MaxTimerMinutes, got.TimerMinutes)
	assert.Equal(t, 7, f.svc.Bank(f.ctx).Filtered)
}

func TestQuizService_UpdateSettingsClampsZeroValues(t *testing.T) {
	f := newQuizFixture(t, nil, nil)

	got, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{
		QuestionCount: intPtr(0),
		TimerMinutes:  intPtr(0),
	})

	require.NoError(t, err)
	assert.Equal(t, quiz.MinQuestions, got.QuestionCount)
	assert.Equal(t, config.MinTimerMinutes, got.TimerMinutes)
}

func TestQuizService_StartWithNoMatchingLevels(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{Levels: []int{3}})
	require.NoError(t, err)

	_, err = f.svc.Start(f.ctx)

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeEmptyBank))
	assert.Equal(t, domain.StepSetup, f.svc.State(f.ctx).Step)
}

func TestQuizService_FullRoundUpdatesProfile(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{QuestionCount: intPtr(5)})
	require.NoError(t, err)

	state, err := f.svc.Start(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPlaying, state.Step)
	assert.Equal(t, "session-1", state.SessionID)
	assert.Equal(t, 5, state.Total)
	require.NotNil(t, state.Question)
	assert.Len(t, state.Question.Options, quiz.OptionCount)

	_, err = f.svc.Result(f.ctx)
	assert.True(t, domain.HasCode(err, domain.CodeInvalidState))

	for i := 0; i < 4; i++ {
		f.pick(t, true)
	}
	assert.Equal(t, 80, f.svc.State(f.ctx).Progress)
	last := f.pick(t, true)
	assert.True(t, last.Last)

	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Round.Score)
	assert.Equal(t, 100, res.Round.Percent)
	require.NotNil(t, res.Award)
	assert.Equal(t, 95, res.Award.XPGained)
	assert.True(t, res.Award.NewBest)
	assert.Equal(t, 95, res.Profile.Profile.XP)
	assert.Equal(t, 1, f.kv.setCount())

	assert.Equal(t, domain.StepResult, f.svc.State(f.ctx).Step)
	assert.Equal(t, domain.StepSetup, f.svc.BackToSetup(f.ctx).Step)
}

func TestQuizService_PickUnknownOption(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.Start(f.ctx)
	require.NoError(t, err)

	_, err = f.svc.Pick(f.ctx, &dto.PickRequest{Option: "definitely-not-an-option"})

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestQuizService_ReviewWrong(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{QuestionCount: intPtr(5)})
	require.NoError(t, err)
	_, err = f.svc.Start(f.ctx)
	require.NoError(t, err)

	f.pick(t, false)
	f.pick(t, true)
	f.pick(t, false)
	f.pick(t, true)
	f.pick(t, true)

	state, err := f.svc.ReviewWrong(f.ctx)
	require.NoError(t, err)
	assert.True(t, state.Review)
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, "session-2", state.SessionID)

	f.pick(t, true)
	f.pick(t, true)
	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	assert.True(t, res.Round.ReviewRound)
	require.NotNil(t, res.Award)
	assert.Equal(t, 2, f.kv.setCount())
}

func TestQuizService_TimerExpiry(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{
		UseTimer:     boolPtr(true),
		TimerMinutes: intPtr(1),
	})
	require.NoError(t, err)

	state, err := f.svc.Start(f.ctx)
	require.NoError(t, err)
	assert.True(t, state.Timer.Enabled)
	assert.Equal(t, int64(60000), state.Timer.RemainingMs)

	f.pick(t, true)
	f.clk.Advance(time.Minute + clock.DefaultFrameInterval)

	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	assert.True(t, res.Round.TimerUsed)
	assert.Equal(t, int64(0), res.RemainingMs)
	assert.Len(t, res.Round.Answers, 1)
	require.NotNil(t, res.Award)
	assert.Equal(t, 10, res.Award.XPGained)
}

func TestQuizService_ImportBank(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	f.repo.On("Replace", mock.Anything, mock.MatchedBy(func(r []domain.QuestionRecord) bool {
		return len(r) == 6
	})).Return(nil).Once()
	_, err := f.svc.Start(f.ctx)
	require.NoError(t, err)

	resp, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader(csvBank(6, false)+"詞0,word0,,1\n"))

	require.NoError(t, err)
	assert.Equal(t, 6, resp.Imported)
	assert.Equal(t, 7, resp.Rows)
	assert.Equal(t, 1, resp.Dropped)
	assert.Equal(t, 6, resp.Bank.Total)

	state := f.svc.State(f.ctx)
	assert.Equal(t, domain.StepSetup, state.Step)
	assert.Equal(t, 6, state.Settings.QuestionCount)
	f.repo.AssertExpectations(t)
}

func TestQuizService_ImportBankFailureKeepsBank(t *testing.T) {
	f := newQuizFixture(t, nil, nil)

	_, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader("中文,英文\n貓,cat\n"))

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeImportFailed))
	assert.Equal(t, 35, f.svc.Bank(f.ctx).Total)
	f.repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestQuizService_ImportBankStorageFailure(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	f.repo.On("Replace", mock.Anything, mock.Anything).Return(errors.New("tx aborted"))

	_, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader(csvBank(5, false)))

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
	assert.Equal(t, 35, f.svc.Bank(f.ctx).Total)
}

func TestQuizService_ResetBank(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	f.repo.On("Replace", mock.Anything, mock.Anything).Return(nil)
	_, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader(csvBank(5, false)))
	require.NoError(t, err)

	summary, err := f.svc.ResetBank(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, 35, summary.Total)
	f.repo.AssertNumberOfCalls(t, "Replace", 2)
}

func TestQuizService_OptionImages(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	f.repo.On("Replace", mock.Anything, mock.Anything).Return(nil)
	_, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader(csvBank(6, true)))
	require.NoError(t, err)

	state, err := f.svc.Start(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Question)
	assert.Empty(t, state.Question.ImageURL)
	for _, o := range state.Question.Options {
		assert.Empty(t, o.ImageURL)
	}

	_, err = f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{UseImages: boolPtr(true)})
	require.NoError(t, err)
	state = f.svc.State(f.ctx)
	require.NotNil(t, state.Question)
	assert.NotEmpty(t, state.Question.ImageURL)
	for _, o := range state.Question.Options {
		assert.Equal(t, "https://img.example/"+strings.TrimPrefix(o.Text, "word")+".png", o.ImageURL)
	}
}

func TestQuizService_ResultWrongAnswerImages(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	f.repo.On("Replace", mock.Anything, mock.Anything).Return(nil)
	_, err := f.svc.ImportBank(f.ctx, "words.csv", strings.NewReader(csvBank(6, true)))
	require.NoError(t, err)
	_, err = f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{UseImages: boolPtr(true)})
	require.NoError(t, err)

	state, err := f.svc.Start(f.ctx)
	require.NoError(t, err)
	for i := 0; i < state.Total; i++ {
		f.pick(t, false)
	}

	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	require.Len(t, res.Round.Wrong, 6)
	for _, w := range res.Round.Wrong {
		assert.Equal(t, "https://img.example/"+strings.TrimPrefix(w.Correct, "word")+".png", w.ImageURL)
	}

	_, err = f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{UseImages: boolPtr(false)})
	require.NoError(t, err)
	res, err = f.svc.Result(f.ctx)
	require.NoError(t, err)
	for _, w := range res.Round.Wrong {
		assert.Empty(t, w.ImageURL)
	}
}

func TestQuizService_ResultReportsRemainingInMilliseconds(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{QuestionCount: intPtr(5), UseTimer: boolPtr(true)})
	require.NoError(t, err)

	_, err = f.svc.Start(f.ctx)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		f.pick(t, true)
	}

	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	assert.Greater(t, res.RemainingMs, int64(0))

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var body struct {
		Round map[string]interface{} `json:"round"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body.Round, "remaining")
	assert.Contains(t, string(raw), `"remaining_ms"`)
}

func TestQuizService_Health(t *testing.T) {
	f := newQuizFixture(t, nil, map[string]HealthCheck{
		"profile_store": func(context.Context) error { return nil },
		"bank_store":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	resp := f.svc.Health(f.ctx)

	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["profile_store"])
	assert.Equal(t, "dial tcp: refused", resp.Checks["bank_store"])
}

func TestQuizService_PerfectLevelOneRound(t *testing.T) {
	f := newQuizFixture(t, nil, nil)
	_, err := f.svc.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{Levels: []int{1}, QuestionCount: intPtr(10)})
	require.NoError(t, err)

	state, err := f.svc.Start(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 10, state.Total)
	for i := 0; i < 10; i++ {
		require.Equal(t, 1, f.svc.State(f.ctx).Question.Level)
		f.pick(t, true)
	}

	res, err := f.svc.Result(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Round.Score)
	assert.Equal(t, 100, res.Round.Percent)
	require.NotNil(t, res.Award)
	// 10 correct, streak 10 → (10-2)*5, perfect bonus.
	assert.Equal(t, 100+40+30, res.Award.XPGained)
	assert.ElementsMatch(t, []string{domain.BadgeStreak3, domain.BadgeStreak5, domain.BadgePerfect}, res.Award.NewBadges)
	assert.Equal(t, 2, res.Profile.Level.Level)
}

package service

import (
	"context"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/clock"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/countdown"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/importer"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/quiz"
	"vocab-quiz/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// QuizService drives the single local quiz session.
type QuizService interface {
	State(ctx context.Context) dto.StateResponse
	Settings(ctx context.Context) dto.SettingsResponse
	UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (dto.SettingsResponse, error)

	Bank(ctx context.Context) dto.BankResponse
	ImportBank(ctx context.Context, filename string, r io.Reader) (*dto.ImportResponse, error)
	ResetBank(ctx context.Context) (dto.BankSummary, error)

	Start(ctx context.Context) (dto.StateResponse, error)
	Pick(ctx context.Context, req *dto.PickRequest) (*dto.PickResponse, error)
	ReviewWrong(ctx context.Context) (dto.StateResponse, error)
	BackToSetup(ctx context.Context) dto.StateResponse
	Result(ctx context.Context) (*dto.ResultResponse, error)

	Profile(ctx context.Context) dto.ProfileResponse
	Health(ctx context.Context) dto.HealthResponse
}

// Clock is the time source the session runs on.
type Clock interface {
	clock.Scheduler
	clock.FrameSource
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// QuizDeps wires a QuizService.
type QuizDeps struct {
	Bank     domain.BankRepository
	Profiles ProfileService
	Clock    Clock
	Defaults config.QuizConfig
	Checks   map[string]HealthCheck

	// Rand and NewID default to a time-seeded source and ULIDs.
	Rand  *rand.Rand
	NewID func() string
}

type settings struct {
	levels        []int
	questionCount int
	useImages     bool
	useTimer      bool
	timerMinutes  int
}

type roundAward struct {
	sessionID string
	award     domain.RoundAward
}

type quizService struct {
	repo     domain.BankRepository
	profiles ProfileService
	machine  *quiz.Machine
	timer    *countdown.Countdown
	checks   map[string]HealthCheck

	// mu guards the bank and settings. It is taken before the machine lock.
	mu       sync.Mutex
	records  []domain.QuestionRecord
	settings settings

	awardMu   sync.Mutex
	lastAward *roundAward
}

// NewQuizService loads the bank from the repository, falling back to the
// built-in bank when the repository is empty.
func NewQuizService(ctx context.Context, deps QuizDeps) (QuizService, error) {
	s := &quizService{
		repo:     deps.Bank,
		profiles: deps.Profiles,
		checks:   deps.Checks,
		settings: settings{
			levels:        append([]int(nil), deps.Defaults.Levels...),
			questionCount: deps.Defaults.QuestionCount,
			useImages:     deps.Defaults.UseImages,
			useTimer:      deps.Defaults.UseTimer,
			timerMinutes:  config.ClampTimerMinutes(deps.Defaults.TimerMinutes),
		},
	}

	records, err := s.loadBank(ctx)
	if err != nil {
		return nil, err
	}
	s.records = records

	newID := deps.NewID
	if newID == nil {
		newID = util.NewULID
	}
	s.timer = countdown.New(deps.Clock, s.settings.timerTotal(), nil)
	s.machine = quiz.NewMachine(quiz.Config{
		Scheduler: deps.Clock,
		Timer:     s.timer,
		Rand:      deps.Rand,
		NewID:     newID,
		OnResult:  s.onResult,
		Logger:    logger.Get(),
	})
	s.machine.SetTimer(s.settings.useTimer, s.settings.timerTotal())
	s.clampCountLocked()
	return s, nil
}

func (s *quizService) loadBank(ctx context.Context) ([]domain.QuestionRecord, error) {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		logger.Get().Error("Failed to load question bank", zap.Error(err))
		return nil, domain.NewStorageError("failed to load question bank", err)
	}
	records, dropped := bank.Normalize(raw)
	if dropped > 0 {
		logger.Get().Warn("Dropped invalid or duplicate bank records", zap.Int("dropped", dropped))
	}
	if len(records) == 0 {
		logger.Get().Info("Question bank is empty, using the built-in bank")
		return bank.DefaultBank(), nil
	}
	logger.Get().Info("Question bank loaded", zap.Int("records", len(records)))
	return records, nil
}

func (st settings) timerTotal() time.Duration {
	return time.Duration(st.timerMinutes) * time.Minute
}

func (s *quizService) filteredLocked() []domain.QuestionRecord {
	return bank.FilterByLevels(s.records, s.settings.levels)
}

func (s *quizService) clampCountLocked() {
	s.settings.questionCount = quiz.ClampQuestionCount(s.settings.questionCount, len(s.filteredLocked()))
}

func (s *quizService) onResult(r domain.RoundResult) {
	_, award, err := s.profiles.ApplyRound(context.Background(), r)
	if err != nil {
		logger.Get().Error("Round result was not saved", zap.String("session_id", r.SessionID), zap.Error(err))
	}
	s.awardMu.Lock()
	s.lastAward = &roundAward{sessionID: r.SessionID, award: award}
	s.awardMu.Unlock()
}

func (s *quizService) State(ctx context.Context) dto.StateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(ctx)
}

func (s *quizService) stateLocked(ctx context.Context) dto.StateResponse {
	snap := s.machine.Snapshot()
	filtered := s.filteredLocked()

	resp := dto.StateResponse{
		SessionID: snap.SessionID,
		Step:      snap.Step,
		Index:     snap.Index,
		Total:     snap.Total,
		Answers:   snap.Answers,
		Score:     snap.Score,
		Streak:    snap.Streak,
		Progress:  snap.Progress,
		Celebrate: snap.Celebrate,
		Advancing: snap.Advancing,
		Review:    snap.Review,
		Timer: dto.TimerView{
			Enabled:     s.settings.useTimer,
			TotalMs:     s.settings.timerTotal().Milliseconds(),
			RemainingMs: snap.Remaining.Milliseconds(),
		},
		Settings: s.settingsLocked(),
		Bank:     s.summaryLocked(filtered),
		Level:    domain.ComputeLevel(s.profiles.Load(ctx).XP),
	}
	if snap.Question != nil {
		resp.Question = s.questionView(snap.Question, filtered)
	}
	return resp
}

func (s *quizService) questionView(q *domain.QuizQuestion, filtered []domain.QuestionRecord) *dto.QuestionView {
	view := &dto.QuestionView{
		Prompt:  q.Prompt,
		Level:   q.Level,
		Options: make([]dto.OptionView, len(q.Options)),
	}
	var images map[string]string
	if s.settings.useImages {
		view.ImageURL = q.ImageURL
		images = answerImages(filtered)
	}
	for i, o := range q.Options {
		view.Options[i] = dto.OptionView{Text: o, ImageURL: images[strings.ToLower(o)]}
	}
	return view
}

// answerImages maps a lower-cased answer to the first image found for it.
func answerImages(records []domain.QuestionRecord) map[string]string {
	images := make(map[string]string, len(records))
	for _, r := range records {
		key := strings.ToLower(r.Answer)
		if _, ok := images[key]; !ok && r.ImageURL != "" {
			images[key] = r.ImageURL
		}
	}
	return images
}

// wrongViewLocked copies the review rows, adding each word's image when
// images are enabled. The exact prompt/answer record wins over another
// record sharing the answer.
func (s *quizService) wrongViewLocked(wrong []domain.WrongAnswer) []domain.WrongAnswer {
	out := make([]domain.WrongAnswer, len(wrong))
	copy(out, wrong)
	if !s.settings.useImages {
		return out
	}
	exact := make(map[string]string, len(s.records))
	for _, r := range s.records {
		if r.ImageURL != "" {
			exact[domain.RecordKey(r.Prompt, r.Answer)] = r.ImageURL
		}
	}
	byAnswer := answerImages(s.records)
	for i := range out {
		if img, ok := exact[domain.RecordKey(out[i].Prompt, out[i].Correct)]; ok {
			out[i].ImageURL = img
			continue
		}
		out[i].ImageURL = byAnswer[strings.ToLower(out[i].Correct)]
	}
	return out
}

func (s *quizService) Settings(ctx context.Context) dto.SettingsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

func (s *quizService) settingsLocked() dto.SettingsResponse {
	return dto.SettingsResponse{
		Levels:        append([]int{}, s.settings.levels...),
		QuestionCount: s.settings.questionCount,
		UseImages:     s.settings.useImages,
		UseTimer:      s.settings.useTimer,
		TimerMinutes:  s.settings.timerMinutes,
	}
}

func (s *quizService) UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (dto.SettingsResponse, error) {
	if req == nil {
		return dto.SettingsResponse{}, domain.NewValidationError("settings are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Levels != nil {
		s.settings.levels = dedupeLevels(req.Levels)
	}
	if req.QuestionCount != nil {
		s.settings.questionCount = *req.QuestionCount
	}
	if req.UseImages != nil {
		s.settings.useImages = *req.UseImages
	}
	if req.UseTimer != nil {
		s.settings.useTimer = *req.UseTimer
	}
	if req.TimerMinutes != nil {
		s.settings.timerMinutes = config.ClampTimerMinutes(*req.TimerMinutes)
	}
	s.clampCountLocked()
	s.machine.SetTimer(s.settings.useTimer, s.settings.timerTotal())

	logger.Get().Debug("Settings updated",
		zap.Ints("levels", s.settings.levels),
		zap.Int("question_count", s.settings.questionCount),
		zap.Bool("use_timer", s.settings.useTimer),
		zap.Int("timer_minutes", s.settings.timerMinutes),
	)
	return s.settingsLocked(), nil
}

func dedupeLevels(levels []int) []int {
	seen := make(map[int]struct{}, len(levels))
	out := make([]int, 0, len(levels))
	for _, lv := range levels {
		if _, ok := seen[lv]; ok {
			continue
		}
		seen[lv] = struct{}{}
		out = append(out, lv)
	}
	return out
}

func (s *quizService) Bank(ctx context.Context) dto.BankResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.BankResponse{
		BankSummary: s.summaryLocked(s.filteredLocked()),
		Records:     append([]domain.QuestionRecord{}, s.records...),
	}
}

func (s *quizService) summaryLocked(filtered []domain.QuestionRecord) dto.BankSummary {
	return dto.BankSummary{
		Total:    len(s.records),
		Filtered: len(filtered),
		Levels:   bank.Levels(s.records),
	}
}

func (s *quizService) ImportBank(ctx context.Context, filename string, r io.Reader) (*dto.ImportResponse, error) {
	res, err := importer.Import(filename, r)
	if err != nil {
		logger.Get().Warn("Bank import rejected", zap.String("file", filename), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceLocked(ctx, res.Records); err != nil {
		return nil, err
	}

	logger.Get().Info("Question bank imported",
		zap.String("file", filename),
		zap.Int("rows", res.Rows),
		zap.Int("imported", len(res.Records)),
		zap.Int("dropped", res.Dropped),
	)
	return &dto.ImportResponse{
		Imported: len(res.Records),
		Rows:     res.Rows,
		Dropped:  res.Dropped,
		Bank:     s.summaryLocked(s.filteredLocked()),
	}, nil
}

func (s *quizService) ResetBank(ctx context.Context) (dto.BankSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceLocked(ctx, bank.DefaultBank()); err != nil {
		return dto.BankSummary{}, err
	}
	logger.Get().Info("Question bank reset to the built-in bank", zap.Int("records", len(s.records)))
	return s.summaryLocked(s.filteredLocked()), nil
}

// replaceLocked persists records, swaps them in and returns the session to
// setup. The active bank is untouched when the write fails.
func (s *quizService) replaceLocked(ctx context.Context, records []domain.QuestionRecord) error {
	if err := s.repo.Replace(ctx, records); err != nil {
		logger.Get().Error("Failed to store question bank", zap.Error(err))
		return domain.NewStorageError("failed to store question bank", err)
	}
	s.records = records
	s.machine.BackToSetup()
	s.clampCountLocked()
	return nil
}

func (s *quizService) Start(ctx context.Context) (dto.StateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked()
	s.clampCountLocked()
	s.machine.SetTimer(s.settings.useTimer, s.settings.timerTotal())
	if err := s.machine.Start(filtered, bank.AnswerPool(filtered), s.settings.questionCount); err != nil {
		return dto.StateResponse{}, err
	}
	return s.stateLocked(ctx), nil
}

func (s *quizService) Pick(ctx context.Context, req *dto.PickRequest) (*dto.PickResponse, error) {
	if req == nil {
		return nil, domain.NewValidationError("option is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.machine.Pick(req.Option)
	if err != nil {
		return nil, err
	}
	return &dto.PickResponse{
		Accepted: out.Accepted,
		Correct:  out.Correct,
		Answer:   out.Answer,
		Streak:   out.Streak,
		Last:     out.Last,
		State:    s.stateLocked(ctx),
	}, nil
}

func (s *quizService) ReviewWrong(ctx context.Context) (dto.StateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.ReviewWrong(bank.AnswerPool(s.filteredLocked())); err != nil {
		return dto.StateResponse{}, err
	}
	return s.stateLocked(ctx), nil
}

func (s *quizService) BackToSetup(ctx context.Context) dto.StateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.BackToSetup()
	return s.stateLocked(ctx)
}

func (s *quizService) Result(ctx context.Context) (*dto.ResultResponse, error) {
	s.mu.Lock()
	round, err := s.machine.Result()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	round.Wrong = s.wrongViewLocked(round.Wrong)
	s.mu.Unlock()

	resp := &dto.ResultResponse{
		Round:       round,
		RemainingMs: round.Remaining.Milliseconds(),
		Profile:     s.Profile(ctx),
	}

	s.awardMu.Lock()
	if s.lastAward != nil && s.lastAward.sessionID == round.SessionID {
		award := s.lastAward.award
		resp.Award = &award
	}
	s.awardMu.Unlock()
	return resp, nil
}

func (s *quizService) Profile(ctx context.Context) dto.ProfileResponse {
	p := s.profiles.Load(ctx)
	return dto.ProfileResponse{Profile: p, Level: domain.ComputeLevel(p.XP)}
}

// Health runs every dependency check concurrently, each bounded by healthCheckTimeout.
func (s *quizService) Health(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range s.checks {
		name, check := name, check
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, healthCheckTimeout)
			defer cancel()

			result := "ok"
			if err := check(checkCtx); err != nil {
				logger.Get().Warn("Health check failed", zap.String("check", name), zap.Error(err))
				result = err.Error()
			}
			mu.Lock()
			resp.Checks[name] = result
			if result != "ok" {
				resp.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return resp
}

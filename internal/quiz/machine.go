// Package quiz holds the session state machine: setup → playing → result.
package quiz

import (
	"math/rand"
	"sync"
	"time"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/clock"
	"vocab-quiz/internal/countdown"
	"vocab-quiz/internal/domain"

	"go.uber.org/zap"
)

const (
	// OptionCount is the number of choices built per question.
	OptionCount = bank.DefaultOptionCount

	// CelebrateDuration is how long the celebration flag stays up after a correct pick.
	CelebrateDuration = 800 * time.Millisecond

	// FeedbackDelay lets the answer feedback render before moving on.
	FeedbackDelay = 260 * time.Millisecond
)

// Config wires the machine's collaborators.
type Config struct {
	Scheduler clock.Scheduler
	// Timer is the session countdown; it only runs while the timer is enabled.
	Timer    *countdown.Countdown
	Rand     *rand.Rand
	NewID    func() string
	OnResult func(domain.RoundResult)
	Logger   *zap.Logger
}

// Machine owns one quiz session. All methods are safe for concurrent use;
// scheduled callbacks and timer expiry take the same lock.
type Machine struct {
	mu       sync.Mutex
	sched    clock.Scheduler
	timer    *countdown.Countdown
	rng      *rand.Rand
	newID    func() string
	onResult func(domain.RoundResult)
	log      *zap.Logger

	timerEnabled bool

	// epoch changes on every reset so that late callbacks are dropped.
	epoch   uint64
	seq     uint64
	pending map[uint64]clock.CancelFunc
	// celebrateTask is the pending task that clears the celebration flag.
	celebrateTask uint64

	id        string
	step      domain.Step
	quiz      []domain.QuizQuestion
	answers   []domain.Answer
	current   int
	streak    int
	celebrate bool
	review    bool
	advancing bool
	result    *domain.RoundResult
}

// NewMachine creates a machine in the setup step.
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		sched:    cfg.Scheduler,
		timer:    cfg.Timer,
		rng:      cfg.Rand,
		newID:    cfg.NewID,
		onResult: cfg.OnResult,
		log:      cfg.Logger,
		pending:  make(map[uint64]clock.CancelFunc),
		step:     domain.StepSetup,
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.newID == nil {
		m.newID = func() string { return "" }
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

// SetOnResult replaces the hook called once per finished round.
func (m *Machine) SetOnResult(fn func(domain.RoundResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResult = fn
}

// SetTimer enables or disables the session countdown and sets its duration.
// A running countdown restarts when the duration changes.
func (m *Machine) SetTimer(enabled bool, total time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer == nil {
		return
	}
	if total != m.timer.Total() {
		m.timer.SetTotal(total)
	}
	if m.timerEnabled == enabled {
		return
	}
	m.timerEnabled = enabled
	if m.step != domain.StepPlaying {
		return
	}
	if enabled {
		m.startTimerLocked()
	} else {
		m.timer.SetRunning(false)
	}
}

// Start begins a new session with up to count questions drawn without
// replacement from source. Options are sampled from pool. Any previous
// session is discarded along with its scheduled callbacks.
func (m *Machine) Start(source []domain.QuestionRecord, pool []string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(source, pool, count, false)
}

// ReviewWrong starts a review round made of the previous round's wrong
// answers only.
func (m *Machine) ReviewWrong(pool []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != domain.StepResult || m.result == nil {
		return domain.NewInvalidStateError("review wrong answers", m.step)
	}
	if len(m.result.Wrong) == 0 {
		return domain.NewValidationError("no wrong answers to review")
	}
	source := make([]domain.QuestionRecord, 0, len(m.result.Wrong))
	for _, w := range m.result.Wrong {
		source = append(source, domain.QuestionRecord{Prompt: w.Prompt, Answer: w.Correct, Level: 1})
	}
	return m.startLocked(source, pool, len(source), true)
}

func (m *Machine) startLocked(source []domain.QuestionRecord, pool []string, count int, review bool) error {
	if len(source) == 0 {
		return domain.NewEmptyBankError()
	}
	if count <= 0 || count > len(source) {
		count = len(source)
	}

	m.resetLocked()

	picked := bank.Shuffle(m.rng, source)[:count]
	m.quiz = make([]domain.QuizQuestion, 0, count)
	for _, q := range picked {
		m.quiz = append(m.quiz, domain.QuizQuestion{
			QuestionRecord: q,
			Options:        bank.SampleOptions(m.rng, q.Answer, pool, OptionCount),
		})
	}
	m.answers = make([]domain.Answer, 0, count)
	m.id = m.newID()
	m.review = review
	m.step = domain.StepPlaying

	if m.timerEnabled && m.timer != nil {
		m.startTimerLocked()
	}

	m.log.Info("Quiz session started",
		zap.String("session_id", m.id),
		zap.Int("questions", len(m.quiz)),
		zap.Bool("review", review),
		zap.Bool("timer", m.timerEnabled),
	)
	return nil
}

func (m *Machine) startTimerLocked() {
	epoch := m.epoch
	m.timer.SetRunning(false)
	m.timer.SetOnFinish(func() { m.expire(epoch) })
	m.timer.SetRunning(true)
}

// PickOutcome describes how a pick was handled.
type PickOutcome struct {
	Accepted bool   `json:"accepted"`
	Correct  bool   `json:"correct"`
	Answer   string `json:"answer"`
	Streak   int    `json:"streak"`
	Last     bool   `json:"last"`
}

// Pick records the user's choice for the current question. Picks outside
// the playing step, or while the feedback delay is pending, are ignored.
func (m *Machine) Pick(option string) (PickOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != domain.StepPlaying || m.advancing || m.current >= len(m.quiz) {
		return PickOutcome{}, nil
	}
	q := m.quiz[m.current]
	if !containsOption(q.Options, option) {
		return PickOutcome{}, domain.NewValidationError("option is not one of the current choices").
			WithContext("option", option)
	}

	a := domain.Answer{Picked: option, Correct: q.Answer, Prompt: q.Prompt}
	m.answers = append(m.answers, a)

	out := PickOutcome{Accepted: true, Correct: a.IsCorrect(), Answer: q.Answer, Last: m.current+1 >= len(m.quiz)}
	m.cancelLocked(m.celebrateTask)
	if out.Correct {
		m.streak++
		m.celebrate = true
		m.celebrateTask = m.scheduleLocked(CelebrateDuration, func() *domain.RoundResult {
			m.celebrate = false
			return nil
		})
	} else {
		m.streak = 0
		m.celebrate = false
	}
	out.Streak = m.streak

	m.advancing = true
	m.scheduleLocked(FeedbackDelay, func() *domain.RoundResult {
		m.advancing = false
		if m.current+1 < len(m.quiz) {
			m.current++
			return nil
		}
		return m.finishLocked()
	})
	return out, nil
}

// BackToSetup abandons the session and returns to setup.
func (m *Machine) BackToSetup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.step = domain.StepSetup
}

// Result returns the finished round.
func (m *Machine) Result() (domain.RoundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != domain.StepResult || m.result == nil {
		return domain.RoundResult{}, domain.NewInvalidStateError("read the result", m.step)
	}
	return *m.result, nil
}

// Step returns the current step.
func (m *Machine) Step() domain.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) expire(epoch uint64) {
	m.mu.Lock()
	if epoch != m.epoch || m.step != domain.StepPlaying {
		m.mu.Unlock()
		return
	}
	m.log.Info("Quiz timer expired",
		zap.String("session_id", m.id),
		zap.Int("answered", len(m.answers)),
		zap.Int("questions", len(m.quiz)),
	)
	res := m.finishLocked()
	hook := m.onResult
	m.mu.Unlock()
	notify(hook, res)
}

// finishLocked moves to result and returns the round for the hook.
func (m *Machine) finishLocked() *domain.RoundResult {
	if m.step != domain.StepPlaying {
		return nil
	}
	m.cancelPendingLocked()
	m.advancing = false
	m.celebrate = false

	var remaining time.Duration
	if m.timerEnabled && m.timer != nil {
		m.timer.SetRunning(false)
		remaining = m.timer.Remaining()
	}

	answers := make([]domain.Answer, len(m.answers))
	copy(answers, m.answers)
	r := domain.NewRoundResult(len(m.quiz), answers)
	r.SessionID = m.id
	r.TimerUsed = m.timerEnabled
	r.Remaining = remaining
	r.ReviewRound = m.review

	m.result = &r
	m.step = domain.StepResult

	m.log.Info("Quiz session finished",
		zap.String("session_id", m.id),
		zap.Int("score", r.Score),
		zap.Int("total", r.Total),
		zap.Int("percent", r.Percent),
		zap.Int("max_streak", r.MaxStreak),
	)
	out := r
	return &out
}

func (m *Machine) resetLocked() {
	m.epoch++
	m.cancelPendingLocked()
	if m.timer != nil {
		m.timer.SetRunning(false)
	}
	m.id = ""
	m.quiz = nil
	m.answers = nil
	m.current = 0
	m.streak = 0
	m.celebrate = false
	m.advancing = false
	m.review = false
	m.result = nil
}

func (m *Machine) cancelLocked(id uint64) {
	if cancel, ok := m.pending[id]; ok {
		cancel()
		delete(m.pending, id)
	}
}

func (m *Machine) cancelPendingLocked() {
	for id, cancel := range m.pending {
		cancel()
		delete(m.pending, id)
	}
}

// scheduleLocked runs fn after delay under the machine lock, unless the
// session was reset in the meantime. A non-nil result from fn is passed to
// the result hook after the lock is released.
func (m *Machine) scheduleLocked(delay time.Duration, fn func() *domain.RoundResult) uint64 {
	epoch := m.epoch
	m.seq++
	id := m.seq
	m.pending[id] = m.sched.Schedule(delay, func() {
		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			return
		}
		if _, ok := m.pending[id]; !ok {
			m.mu.Unlock()
			return
		}
		delete(m.pending, id)
		res := fn()
		hook := m.onResult
		m.mu.Unlock()
		notify(hook, res)
	})
	return id
}

func notify(hook func(domain.RoundResult), res *domain.RoundResult) {
	if hook != nil && res != nil {
		hook(*res)
	}
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}

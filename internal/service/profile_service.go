package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"

	"go.uber.org/zap"
)

// ProfileService owns the player profile and its persistence.
type ProfileService interface {
	// Load returns the current profile. A missing or unreadable blob
	// yields a fresh profile.
	Load(ctx context.Context) domain.Profile

	// ApplyRound credits a finished round and persists the whole profile.
	// The in-memory profile is updated even when the write fails.
	ApplyRound(ctx context.Context, r domain.RoundResult) (domain.Profile, domain.RoundAward, error)
}

type profileService struct {
	store domain.KVStore
	key   string
	now   func() time.Time

	mu      sync.Mutex
	profile *domain.Profile
}

// NewProfileService creates a profile service backed by store.
func NewProfileService(store domain.KVStore, now func() time.Time) ProfileService {
	if now == nil {
		now = time.Now
	}
	return &profileService{
		store: store,
		key:   cache.ProfileKey(),
		now:   now,
	}
}

func (s *profileService) Load(ctx context.Context) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx).Clone()
}

func (s *profileService) loadLocked(ctx context.Context) domain.Profile {
	if s.profile != nil {
		return *s.profile
	}

	p := domain.NewProfile()
	data, err := s.store.Get(ctx, s.key)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		logger.Get().Debug("No stored profile, starting fresh", zap.String("key", s.key))
	case err != nil:
		logger.Get().Warn("Failed to read profile, starting fresh", zap.String("key", s.key), zap.Error(err))
	default:
		var stored domain.Profile
		if err := json.Unmarshal([]byte(data), &stored); err != nil {
			logger.Get().Warn("Stored profile is corrupt, starting fresh", zap.String("key", s.key), zap.Error(err))
		} else {
			stored.Sanitize()
			p = stored
		}
	}

	// A failed read is not cached so a later call can retry the store.
	if err == nil || errors.Is(err, domain.ErrKeyNotFound) {
		s.profile = &p
	}
	return p
}

func (s *profileService) ApplyRound(ctx context.Context, r domain.RoundResult) (domain.Profile, domain.RoundAward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.loadLocked(ctx)
	next, award := domain.ApplyRound(current, r, s.now())
	s.profile = &next

	logger.Get().Info("Round credited to profile",
		zap.String("session_id", r.SessionID),
		zap.Int("xp_gained", award.XPGained),
		zap.Int("xp", next.XP),
		zap.Int("level", award.LevelAfter.Level),
		zap.Strings("new_badges", award.NewBadges),
		zap.Bool("new_best", award.NewBest),
	)

	data, err := json.Marshal(next)
	if err != nil {
		return next.Clone(), award, domain.NewInternalError("failed to encode profile", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		logger.Get().Error("Failed to persist profile", zap.String("key", s.key), zap.Error(err))
		return next.Clone(), award, domain.NewStorageError("failed to save profile", err)
	}
	return next.Clone(), award, nil
}

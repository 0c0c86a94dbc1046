package domain

import (
	"math"
	"time"
)

// Badge identifiers. Once earned a badge is never revoked.
const (
	BadgeStreak3 = "streak3"
	BadgeStreak5 = "streak5"
	BadgePerfect = "perfect"
)

const (
	xpPerCorrect     = 10
	xpPerStreakPoint = 5
	streakGrace      = 2
	xpPerfectBonus   = 30
	timeBonusCap     = 50
	secondsPerBonus  = 5
	perfectBadgeMin  = 5
	baseLevelXP      = 100
	levelXPIncrement = 20
)

// BestRecord is the highest-percent round seen so far.
type BestRecord struct {
	Score   int        `json:"score"`
	Percent int        `json:"percent"`
	Streak  int        `json:"streak"`
	At      *time.Time `json:"at"`
}

// Profile is the cross-session progress of the player.
type Profile struct {
	XP           int             `json:"xp"`
	TotalCorrect int             `json:"totalCorrect"`
	TotalPlayed  int             `json:"totalPlayed"`
	Best         BestRecord      `json:"best"`
	Badges       map[string]bool `json:"badges"`
}

// NewProfile returns a fresh profile.
func NewProfile() Profile {
	return Profile{Badges: map[string]bool{}}
}

// Clone returns a deep copy so callers can't mutate shared badge maps.
func (p Profile) Clone() Profile {
	out := p
	out.Badges = make(map[string]bool, len(p.Badges))
	for k, v := range p.Badges {
		out.Badges[k] = v
	}
	if p.Best.At != nil {
		at := *p.Best.At
		out.Best.At = &at
	}
	return out
}

// Sanitize repairs values a hand-edited or older blob may carry.
func (p *Profile) Sanitize() {
	if p.XP < 0 {
		p.XP = 0
	}
	if p.TotalCorrect < 0 {
		p.TotalCorrect = 0
	}
	if p.TotalPlayed < 0 {
		p.TotalPlayed = 0
	}
	if p.Badges == nil {
		p.Badges = map[string]bool{}
	}
}

// LevelInfo describes where an XP total sits on the level ladder.
type LevelInfo struct {
	Level       int `json:"level"`
	XPIntoLevel int `json:"xp_into_level"`
	XPForNext   int `json:"xp_for_next"`
	Percent     int `json:"percent"`
}

// LevelRequirement is the XP needed to clear level lv.
func LevelRequirement(lv int) int {
	return baseLevelXP + (lv-1)*levelXPIncrement
}

// ComputeLevel walks the level ladder for xp.
func ComputeLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	lv, left, need := 1, xp, LevelRequirement(1)
	for left >= need {
		left -= need
		lv++
		need = LevelRequirement(lv)
	}
	pct := int(math.Round(100 * float64(left) / float64(need)))
	if pct > 100 {
		pct = 100
	}
	return LevelInfo{Level: lv, XPIntoLevel: left, XPForNext: need, Percent: pct}
}

// XPBreakdown itemizes the experience earned by one round.
type XPBreakdown struct {
	Correct int `json:"correct"`
	Streak  int `json:"streak"`
	Time    int `json:"time"`
	Perfect int `json:"perfect"`
}

// Total sums the breakdown.
func (b XPBreakdown) Total() int {
	return b.Correct + b.Streak + b.Time + b.Perfect
}

// ComputeXP scores a round.
func ComputeXP(r RoundResult) XPBreakdown {
	var b XPBreakdown
	b.Correct = r.Score * xpPerCorrect
	if r.MaxStreak > streakGrace {
		b.Streak = (r.MaxStreak - streakGrace) * xpPerStreakPoint
	}
	if r.TimerUsed {
		secs := int(r.Remaining / time.Second)
		b.Time = secs / secondsPerBonus
		if b.Time > timeBonusCap {
			b.Time = timeBonusCap
		}
	}
	if r.Perfect() {
		b.Perfect = xpPerfectBonus
	}
	return b
}

// EarnedBadges lists the badges a round qualifies for.
func EarnedBadges(r RoundResult) []string {
	var badges []string
	if r.MaxStreak >= 3 {
		badges = append(badges, BadgeStreak3)
	}
	if r.MaxStreak >= 5 {
		badges = append(badges, BadgeStreak5)
	}
	if r.Score == r.Total && r.Total >= perfectBadgeMin {
		badges = append(badges, BadgePerfect)
	}
	return badges
}

// RoundAward is what one round changed on the profile.
type RoundAward struct {
	XP          XPBreakdown `json:"xp"`
	XPGained    int         `json:"xp_gained"`
	NewBadges   []string    `json:"new_badges"`
	NewBest     bool        `json:"new_best"`
	LevelBefore LevelInfo   `json:"level_before"`
	LevelAfter  LevelInfo   `json:"level_after"`
}

// ApplyRound returns the profile after crediting r, and the award summary.
// The input profile is not modified.
func ApplyRound(p Profile, r RoundResult, now time.Time) (Profile, RoundAward) {
	next := p.Clone()
	next.Sanitize()

	award := RoundAward{
		XP:          ComputeXP(r),
		LevelBefore: ComputeLevel(next.XP),
		NewBadges:   []string{},
	}
	award.XPGained = award.XP.Total()
	next.XP += award.XPGained
	if next.XP < 0 {
		next.XP = 0
	}
	award.LevelAfter = ComputeLevel(next.XP)

	for _, b := range EarnedBadges(r) {
		if !next.Badges[b] {
			award.NewBadges = append(award.NewBadges, b)
		}
		next.Badges[b] = true
	}

	if r.Percent > next.Best.Percent {
		at := now
		next.Best = BestRecord{Score: r.Score, Percent: r.Percent, Streak: r.MaxStreak, At: &at}
		award.NewBest = true
	}

	next.TotalCorrect += r.Score
	next.TotalPlayed++
	return next, award
}

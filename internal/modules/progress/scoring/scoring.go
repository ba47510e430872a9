// Package scoring converts raw activity counts into points. Everything here is
// pure; lesson configuration is passed in and defaults are resolved by Rates.
package scoring

import "github.com/yungbote/progress-engine/internal/domain/catalog"

const (
	TimePointsPerMinute  = 1
	VideoPointsPerMinute = 10
)

// Rates holds the engine defaults applied when a lesson leaves a quiz or
// challenge scoring field unset.
type Rates struct {
	QuizPointsPerPercent  int `yaml:"quiz_points_per_percent" json:"quiz_points_per_percent"`
	QuizBonusPoints       int `yaml:"quiz_bonus_points" json:"quiz_bonus_points"`
	ChallengeDurationDays int `yaml:"challenge_duration_days" json:"challenge_duration_days"`
	ChallengePointsPerDay int `yaml:"challenge_points_per_day" json:"challenge_points_per_day"`
	ChallengeBonusPoints  int `yaml:"challenge_bonus_points" json:"challenge_bonus_points"`
}

func DefaultRates() Rates {
	return Rates{
		QuizPointsPerPercent:  1,
		QuizBonusPoints:       20,
		ChallengeDurationDays: 7,
		ChallengePointsPerDay: 10,
		ChallengeBonusPoints:  50,
	}
}

// Normalize fills non-positive fields from DefaultRates. Bonuses may be zero.
func (r Rates) Normalize() Rates {
	def := DefaultRates()
	if r.QuizPointsPerPercent <= 0 {
		r.QuizPointsPerPercent = def.QuizPointsPerPercent
	}
	if r.QuizBonusPoints < 0 {
		r.QuizBonusPoints = def.QuizBonusPoints
	}
	if r.ChallengeDurationDays <= 0 {
		r.ChallengeDurationDays = def.ChallengeDurationDays
	}
	if r.ChallengePointsPerDay <= 0 {
		r.ChallengePointsPerDay = def.ChallengePointsPerDay
	}
	if r.ChallengeBonusPoints < 0 {
		r.ChallengeBonusPoints = def.ChallengeBonusPoints
	}
	return r
}

type QuizRates struct {
	PointsPerPercent int
	BonusPoints      int
}

type ChallengeRates struct {
	DurationDays int
	PointsPerDay int
	BonusPoints  int
}

// Quiz resolves the effective quiz rates for a lesson's quiz config.
func (r Rates) Quiz(cfg *catalog.QuizConfig) QuizRates {
	r = r.Normalize()
	out := QuizRates{PointsPerPercent: r.QuizPointsPerPercent, BonusPoints: r.QuizBonusPoints}
	if cfg == nil {
		return out
	}
	if cfg.PointsPerPercent != nil && *cfg.PointsPerPercent >= 0 {
		out.PointsPerPercent = *cfg.PointsPerPercent
	}
	if cfg.BonusPoints != nil && *cfg.BonusPoints >= 0 {
		out.BonusPoints = *cfg.BonusPoints
	}
	return out
}

// Challenge resolves the effective challenge rates for a lesson's challenge config.
func (r Rates) Challenge(cfg *catalog.ChallengeConfig) ChallengeRates {
	r = r.Normalize()
	out := ChallengeRates{
		DurationDays: r.ChallengeDurationDays,
		PointsPerDay: r.ChallengePointsPerDay,
		BonusPoints:  r.ChallengeBonusPoints,
	}
	if cfg == nil {
		return out
	}
	if cfg.DurationDays > 0 {
		out.DurationDays = cfg.DurationDays
	}
	if cfg.PointsPerDay > 0 {
		out.PointsPerDay = cfg.PointsPerDay
	}
	if cfg.BonusPoints != nil && *cfg.BonusPoints >= 0 {
		out.BonusPoints = *cfg.BonusPoints
	}
	return out
}

func TimePoints(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes * TimePointsPerMinute
}

func VideoPoints(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes * VideoPointsPerMinute
}

func QuizPoints(scorePercent int, passed bool, r QuizRates) int {
	if scorePercent < 0 {
		scorePercent = 0
	}
	pts := scorePercent * r.PointsPerPercent
	if passed {
		pts += r.BonusPoints
	}
	return pts
}

// ChallengePoints is recomputed from the completed-day count on every check-in.
func ChallengePoints(completedDays int, completed bool, r ChallengeRates) int {
	if completedDays < 0 {
		completedDays = 0
	}
	pts := completedDays * r.PointsPerDay
	if completed {
		pts += r.BonusPoints
	}
	return pts
}

package domain

import "time"

const (
	GameTimeLimit = 15 * time.Second

	// GameGrace absorbs the round trip between the last hit and the completion request.
	GameGrace = 3 * time.Second
)

// GameChallenge is the timed skill game that gates a stock claim. Harder
// tiers ask for more targets that stay on screen for less time.
type GameChallenge struct {
	ID             string        `json:"id"`
	TierID         string        `json:"tier_id"`
	Targets        int           `json:"targets"`
	TargetInterval time.Duration `json:"-"`
	TimeLimit      time.Duration `json:"-"`
	IssuedAt       time.Time     `json:"issued_at"`
}

// GameDifficulty returns the number of targets and how long each stays visible for a tier.
func GameDifficulty(tierID string) (int, time.Duration) {
	switch tierID {
	case TierPlatinum:
		return 15, 700 * time.Millisecond
	case TierEmerald:
		return 10, 1000 * time.Millisecond
	default:
		return 6, 1500 * time.Millisecond
	}
}

func NewGameChallenge(id, tierID string, now time.Time) GameChallenge {
	targets, interval := GameDifficulty(tierID)

	return GameChallenge{
		ID:             id,
		TierID:         tierID,
		Targets:        targets,
		TargetInterval: interval,
		TimeLimit:      GameTimeLimit,
		IssuedAt:       now,
	}
}

func (c GameChallenge) Deadline() time.Time {
	return c.IssuedAt.Add(c.TimeLimit + GameGrace)
}

// Passed reports whether hits reached the target count before the deadline.
func (c GameChallenge) Passed(hits int, now time.Time) bool {
	return hits >= c.Targets && !now.After(c.Deadline())
}

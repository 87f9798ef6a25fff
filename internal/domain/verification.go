package domain

import "time"

const (
	MaxFailedVerifications = 5
	VerificationCooldown   = 5 * time.Minute
)

// VerificationLimiter counts consecutive failed phone lookups for one session.
type VerificationLimiter struct {
	Failures    int       `json:"failures"`
	LockedUntil time.Time `json:"locked_until"`
}

// Allow returns false with the remaining cooldown while the limiter is locked.
// An expired cooldown clears the counter.
func (l *VerificationLimiter) Allow(now time.Time) (time.Duration, bool) {
	if l.LockedUntil.IsZero() {
		return 0, true
	}
	if now.Before(l.LockedUntil) {
		return l.LockedUntil.Sub(now), false
	}

	l.Failures = 0
	l.LockedUntil = time.Time{}

	return 0, true
}

// RecordFailure counts a not found lookup and reports whether it started a cooldown.
func (l *VerificationLimiter) RecordFailure(now time.Time) bool {
	l.Failures++
	if l.Failures < MaxFailedVerifications {
		return false
	}
	l.LockedUntil = now.Add(VerificationCooldown)

	return true
}

func (l *VerificationLimiter) RecordSuccess() {
	l.Failures = 0
	l.LockedUntil = time.Time{}
}

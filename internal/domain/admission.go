package domain

import (
	"crypto/subtle"
	"errors"
	"time"
)

type AdmissionState string

const (
	StateUnverified    AdmissionState = "unverified"
	StateVoting        AdmissionState = "voting"
	StateAwaitingClose AdmissionState = "awaiting_close"
	StateTierSelecting AdmissionState = "tier_selecting"
	StateMiniGame      AdmissionState = "mini_game"
	StateClaiming      AdmissionState = "claiming"
	StateIssuing       AdmissionState = "issuing"
	StateIssued        AdmissionState = "issued"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed from current state")
	ErrTierSoldOut       = errors.New("tier is sold out")
	ErrGameFailed        = errors.New("mini game not passed")
	ErrChallengeMismatch = errors.New("unknown game challenge")
	ErrInvalidClaimToken = errors.New("invalid claim token")
)

// AdmissionSession walks one visitor from phone verification to issued tickets.
// Methods mutate the session in place and never touch storage.
type AdmissionSession struct {
	ID         string              `json:"id"`
	State      AdmissionState      `json:"state"`
	GuestID    string              `json:"guest_id,omitempty"`
	GuestName  string              `json:"guest_name,omitempty"`
	Limiter    VerificationLimiter `json:"-"`
	TierID     string              `json:"tier_id,omitempty"`
	Challenge  *GameChallenge      `json:"challenge,omitempty"`
	ClaimToken string              `json:"-"`
	CreatedAt  time.Time           `json:"created_at"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

func NewAdmissionSession(id string, now time.Time, ttl time.Duration) *AdmissionSession {
	return &AdmissionSession{
		ID:        id,
		State:     StateUnverified,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *AdmissionSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Verified records the guest behind the session and resolves where they land.
func (s *AdmissionSession) Verified(guest Guest, existing *Rsvp, votingClosed bool) error {
	if s.State != StateUnverified {
		return ErrInvalidTransition
	}
	s.GuestID = guest.ID
	s.GuestName = guest.Name
	s.Limiter.RecordSuccess()
	s.resolve(existing, votingClosed)

	return nil
}

// Refresh re-evaluates a verified session against the latest submission and
// voting status. Sessions already inside the claim flow keep their state
// unless tickets were issued elsewhere.
func (s *AdmissionSession) Refresh(existing *Rsvp, votingClosed bool) {
	switch s.State {
	case StateUnverified, StateIssued:
		return
	case StateVoting, StateAwaitingClose:
		s.resolve(existing, votingClosed)
	default:
		if existing != nil && existing.HasTickets() {
			s.resolve(existing, votingClosed)
		}
	}
}

func (s *AdmissionSession) resolve(existing *Rsvp, votingClosed bool) {
	s.TierID = ""
	s.Challenge = nil
	s.ClaimToken = ""

	switch {
	case existing != nil && existing.HasTickets():
		s.State = StateIssued
	case !votingClosed && existing != nil:
		s.State = StateAwaitingClose
	case !votingClosed:
		s.State = StateVoting
	default:
		s.State = StateTierSelecting
	}
}

func (s *AdmissionSession) Voted() error {
	if s.State != StateVoting {
		return ErrInvalidTransition
	}
	s.State = StateAwaitingClose

	return nil
}

// SelectTier starts the mini game for tier. A tier without stock is refused.
func (s *AdmissionSession) SelectTier(tier TicketTier, challenge GameChallenge) error {
	if s.State != StateTierSelecting {
		return ErrInvalidTransition
	}
	if !tier.Available() {
		return ErrTierSoldOut
	}
	s.TierID = tier.ID
	s.Challenge = &challenge
	s.State = StateMiniGame

	return nil
}

func (s *AdmissionSession) AbandonGame() error {
	if s.State != StateMiniGame {
		return ErrInvalidTransition
	}
	s.TierID = ""
	s.Challenge = nil
	s.State = StateTierSelecting

	return nil
}

// CompleteGame checks the reported hits and, on a pass, hands out the one
// time token required by the stock claim. A failed game stays in mini_game.
func (s *AdmissionSession) CompleteGame(challengeID string, hits int, now time.Time, token string) error {
	if s.State != StateMiniGame || s.Challenge == nil {
		return ErrInvalidTransition
	}
	if s.Challenge.ID != challengeID {
		return ErrChallengeMismatch
	}
	if !s.Challenge.Passed(hits, now) {
		return ErrGameFailed
	}
	s.Challenge = nil
	s.ClaimToken = token
	s.State = StateClaiming

	return nil
}

// AuthorizeClaim validates the claim token and returns the tier to claim.
func (s *AdmissionSession) AuthorizeClaim(token string) (string, error) {
	if s.State != StateClaiming {
		return "", ErrInvalidTransition
	}
	if s.ClaimToken == "" || subtle.ConstantTimeCompare([]byte(s.ClaimToken), []byte(token)) != 1 {
		return "", ErrInvalidClaimToken
	}

	return s.TierID, nil
}

// ClaimFailed drops the tier after an exhausted claim and returns to tier selection.
func (s *AdmissionSession) ClaimFailed() {
	s.ClaimToken = ""
	s.TierID = ""
	s.State = StateTierSelecting
}

func (s *AdmissionSession) Claimed() error {
	if s.State != StateClaiming {
		return ErrInvalidTransition
	}
	s.ClaimToken = ""
	s.State = StateIssuing

	return nil
}

func (s *AdmissionSession) Issued() error {
	if s.State != StateIssuing {
		return ErrInvalidTransition
	}
	s.State = StateIssued

	return nil
}

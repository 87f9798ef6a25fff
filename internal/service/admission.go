package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/pkg/ticketid"
	"github.com/lumina-events/invitation-api/internal/repository"
	"github.com/lumina-events/invitation-api/internal/session"
)

const issueAttempts = 3

var (
	ErrSessionNotFound      = session.ErrSessionNotFound
	ErrRsvpNotFound         = repository.ErrRsvpNotFound
	ErrTicketsAlreadyIssued = repository.ErrTicketsAlreadyIssued

	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrTierSoldOut       = domain.ErrTierSoldOut
	ErrGameFailed        = domain.ErrGameFailed
	ErrChallengeMismatch = domain.ErrChallengeMismatch
	ErrInvalidClaimToken = domain.ErrInvalidClaimToken

	ErrRateLimited       = errors.New("too many failed verifications")
	ErrAlreadyVoted      = errors.New("guest already voted")
	ErrVotingClosed      = errors.New("voting is closed")
	ErrStockExhausted    = errors.New("tier stock exhausted")
	ErrInvalidGuestCount = fmt.Errorf("guest count must be between 0 and %d", domain.MaxCompanions)
	ErrIdentityRequired  = errors.New("first name and email are required")
)

// RateLimitError carries the remaining cooldown of a locked session.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

type SessionStore interface {
	Create() domain.AdmissionSession
	With(id string, fn func(*domain.AdmissionSession) error) error
	Clear()
}

type RsvpRepository interface {
	CreateVote(ctx context.Context, rsvp domain.Rsvp) (domain.Rsvp, error)
	FindByGuestID(ctx context.Context, guestID string) (domain.Rsvp, error)
	List(ctx context.Context) ([]domain.Rsvp, error)
	Issue(ctx context.Context, rsvp domain.Rsvp) (domain.Rsvp, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.Rsvp, error)
}

type Notifier interface {
	TicketsIssued(rsvp domain.Rsvp, tier domain.TicketTier)
	TicketScanned(result domain.ScanResult)
}

// AdmissionView is everything a guest screen needs after one step.
type AdmissionView struct {
	Session        domain.AdmissionSession `json:"session"`
	Config         domain.EventConfig      `json:"config"`
	VotingClosed   bool                    `json:"voting_closed"`
	Venues         []domain.Venue          `json:"venues"`
	ConfirmedVenue *domain.Venue           `json:"confirmed_venue,omitempty"`
	Tiers          []domain.TicketTier     `json:"tiers"`
	Rsvp           *domain.Rsvp            `json:"rsvp,omitempty"`
	ClaimToken     string                  `json:"claim_token,omitempty"`
}

type VoteInput struct {
	VenueID   string
	FirstName string
	LastName  string
	Email     string
}

// IssueInput collects the companion count. Identity fields are only read
// when the guest never voted.
type IssueInput struct {
	GuestCount int
	FirstName  string
	LastName   string
	Email      string
}

type AdmissionService struct {
	store  SessionStore
	guests GuestRepository
	rsvps  RsvpRepository
	config *ConfigService
	notify Notifier
	now    func() time.Time
}

func NewAdmissionService(store SessionStore, guests GuestRepository, rsvps RsvpRepository, config *ConfigService, notify Notifier) *AdmissionService {
	return &AdmissionService{
		store:  store,
		guests: guests,
		rsvps:  rsvps,
		config: config,
		notify: notify,
		now:    time.Now,
	}
}

func (s *AdmissionService) StartSession(ctx context.Context) (AdmissionView, error) {
	sess := s.store.Create()

	return s.view(ctx, sess, nil)
}

// Session returns the current view, re-resolved against the latest submission
// and voting status.
func (s *AdmissionService) Session(ctx context.Context, sessionID string) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}

		view, err = s.view(ctx, *sess, existing)
		return err
	})

	return view, err
}

// Verify matches phone against the guest directory. Malformed numbers are
// rejected without counting towards the lockout.
func (s *AdmissionService) Verify(ctx context.Context, sessionID, phone string) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		now := s.now()
		if retry, ok := sess.Limiter.Allow(now); !ok {
			return &RateLimitError{RetryAfter: retry}
		}

		phone = strings.TrimSpace(phone)
		if !domain.IsValidPhone(phone) {
			return ErrInvalidPhone
		}
		if sess.State != domain.StateUnverified {
			return ErrInvalidTransition
		}

		guest, err := s.guests.FindByPhone(ctx, phone)
		if errors.Is(err, repository.ErrGuestNotFound) {
			if sess.Limiter.RecordFailure(now) {
				zap.L().Warn("verification locked", zap.String("session", sess.ID))
			}
			return ErrGuestNotFound
		}
		if err != nil {
			return fmt.Errorf("s.guests.FindByPhone -> %w", err)
		}

		existing, err := s.findRsvp(ctx, guest.ID)
		if err != nil {
			return err
		}
		closed, err := s.config.VotingClosed(ctx)
		if err != nil {
			return err
		}

		if !guest.Used {
			if err := s.guests.MarkUsed(ctx, guest.ID, now); err != nil {
				return fmt.Errorf("s.guests.MarkUsed -> %w", err)
			}
		}
		if err := sess.Verified(guest, existing, closed); err != nil {
			return err
		}

		view, err = s.view(ctx, *sess, existing)
		return err
	})

	return view, err
}

// Vote records the guest's venue choice. Each guest votes at most once.
func (s *AdmissionService) Vote(ctx context.Context, sessionID string, in VoteInput) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		if _, err := s.sync(ctx, sess); err != nil {
			return err
		}
		switch sess.State {
		case domain.StateVoting:
		case domain.StateAwaitingClose, domain.StateIssued:
			return ErrAlreadyVoted
		case domain.StateUnverified:
			return ErrInvalidTransition
		default:
			return ErrVotingClosed
		}

		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Email) == "" {
			return ErrIdentityRequired
		}
		if _, err := s.config.FindVenue(ctx, in.VenueID); err != nil {
			return err
		}

		venueID := in.VenueID
		created, err := s.rsvps.CreateVote(ctx, domain.Rsvp{
			GuestID:         sess.GuestID,
			FirstName:       strings.TrimSpace(in.FirstName),
			LastName:        strings.TrimSpace(in.LastName),
			Email:           strings.TrimSpace(in.Email),
			SelectedVenueID: &venueID,
		})
		if errors.Is(err, repository.ErrRsvpExists) {
			if _, err := s.sync(ctx, sess); err != nil {
				return err
			}
			return ErrAlreadyVoted
		}
		if err != nil {
			return fmt.Errorf("s.rsvps.CreateVote -> %w", err)
		}

		if err := sess.Voted(); err != nil {
			return err
		}
		zap.L().Info("vote recorded", zap.String("guest", sess.GuestID), zap.String("venue", venueID))

		view, err = s.view(ctx, *sess, &created)
		return err
	})

	return view, err
}

// SelectTier starts the mini game for a tier that still has stock.
func (s *AdmissionService) SelectTier(ctx context.Context, sessionID, tierID string) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}
		if sess.State == domain.StateIssued {
			return ErrTicketsAlreadyIssued
		}

		tier, err := s.config.FindTier(ctx, tierID)
		if err != nil {
			return err
		}
		challenge := domain.NewGameChallenge(uuid.NewString(), tier.ID, s.now())
		if err := sess.SelectTier(tier, challenge); err != nil {
			return err
		}

		view, err = s.view(ctx, *sess, existing)
		return err
	})

	return view, err
}

func (s *AdmissionService) AbandonGame(ctx context.Context, sessionID string) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}
		if err := sess.AbandonGame(); err != nil {
			return err
		}

		view, err = s.view(ctx, *sess, existing)
		return err
	})

	return view, err
}

// CompleteGame reports the mini game result. A pass returns the claim token
// in the view; a fail leaves the game open for another try.
func (s *AdmissionService) CompleteGame(ctx context.Context, sessionID, challengeID string, hits int) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}

		token := uuid.NewString()
		if err := sess.CompleteGame(challengeID, hits, s.now(), token); err != nil {
			return err
		}

		view, err = s.view(ctx, *sess, existing)
		view.ClaimToken = token
		return err
	})

	return view, err
}

// Claim takes one unit of the selected tier. On exhaustion the session goes
// back to tier selection and the returned view carries the fresh stock.
func (s *AdmissionService) Claim(ctx context.Context, sessionID, token string) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}
		if sess.State == domain.StateIssued {
			view, err = s.view(ctx, *sess, existing)
			if err != nil {
				return err
			}
			return ErrTicketsAlreadyIssued
		}

		tierID, err := sess.AuthorizeClaim(token)
		if err != nil {
			return err
		}

		stock, err := s.config.ClaimTicket(ctx, tierID)
		if err != nil {
			return err
		}
		if stock == domain.ClaimExhausted {
			sess.ClaimFailed()
			zap.L().Info("claim on exhausted tier", zap.String("tier", tierID), zap.String("session", sess.ID))

			view, err = s.view(ctx, *sess, existing)
			if err != nil {
				return err
			}
			return ErrStockExhausted
		}

		if err := sess.Claimed(); err != nil {
			return err
		}
		zap.L().Info("ticket claimed", zap.String("tier", tierID), zap.Int("stock", stock))

		view, err = s.view(ctx, *sess, existing)
		return err
	})

	return view, err
}

// Issue generates one ticket for the guest and one per companion, and stores
// them with the claimed tier on the guest's submission.
func (s *AdmissionService) Issue(ctx context.Context, sessionID string, in IssueInput) (AdmissionView, error) {
	var view AdmissionView
	err := s.store.With(sessionID, func(sess *domain.AdmissionSession) error {
		existing, err := s.sync(ctx, sess)
		if err != nil {
			return err
		}
		if sess.State == domain.StateIssued {
			return ErrTicketsAlreadyIssued
		}
		if sess.State != domain.StateIssuing {
			return ErrInvalidTransition
		}
		if in.GuestCount < 0 || in.GuestCount > domain.MaxCompanions {
			return ErrInvalidGuestCount
		}

		rsvp := domain.Rsvp{
			GuestID:    sess.GuestID,
			FirstName:  strings.TrimSpace(in.FirstName),
			LastName:   strings.TrimSpace(in.LastName),
			Email:      strings.TrimSpace(in.Email),
			GuestCount: in.GuestCount,
		}
		if existing != nil {
			rsvp.FirstName = existing.FirstName
			if existing.LastName != "" {
				rsvp.LastName = existing.LastName
			}
			if existing.Email != "" {
				rsvp.Email = existing.Email
			}
		}
		if rsvp.FirstName == "" || rsvp.Email == "" {
			return ErrIdentityRequired
		}

		tier, err := s.config.FindTier(ctx, sess.TierID)
		if err != nil {
			return err
		}
		tierID := tier.ID
		rsvp.SelectedTierID = &tierID

		issued, err := s.issue(ctx, rsvp)
		if errors.Is(err, ErrTicketsAlreadyIssued) {
			if _, err := s.sync(ctx, sess); err != nil {
				return err
			}
			return ErrTicketsAlreadyIssued
		}
		if err != nil {
			return err
		}
		if err := sess.Issued(); err != nil {
			return err
		}
		zap.L().Info("tickets issued",
			zap.String("guest", sess.GuestID),
			zap.String("tier", tier.ID),
			zap.Int("count", len(issued.TicketIDs)),
		)
		s.notify.TicketsIssued(issued, tier)

		view, err = s.view(ctx, *sess, &issued)
		return err
	})

	return view, err
}

// issue retries with fresh identifiers when a generated ticket ID collides.
func (s *AdmissionService) issue(ctx context.Context, rsvp domain.Rsvp) (domain.Rsvp, error) {
	var lastErr error
	for attempt := 0; attempt < issueAttempts; attempt++ {
		ids, err := ticketid.Generate(rsvp.FirstName, rsvp.Pax())
		if err != nil {
			return domain.Rsvp{}, fmt.Errorf("ticketid.Generate -> %w", err)
		}
		rsvp.TicketIDs = ids

		issued, err := s.rsvps.Issue(ctx, rsvp)
		if err == nil {
			return issued, nil
		}
		if errors.Is(err, repository.ErrTicketsAlreadyIssued) {
			return domain.Rsvp{}, ErrTicketsAlreadyIssued
		}
		if !errors.Is(err, repository.ErrTicketExists) {
			return domain.Rsvp{}, fmt.Errorf("s.rsvps.Issue -> %w", err)
		}
		lastErr = err
	}

	return domain.Rsvp{}, fmt.Errorf("s.rsvps.Issue -> %w", lastErr)
}

// sync re-resolves a verified session against storage.
func (s *AdmissionService) sync(ctx context.Context, sess *domain.AdmissionSession) (*domain.Rsvp, error) {
	if sess.State == domain.StateUnverified {
		return nil, nil
	}

	existing, err := s.findRsvp(ctx, sess.GuestID)
	if err != nil {
		return nil, err
	}
	closed, err := s.config.VotingClosed(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.releaseSuperseded(ctx, sess, existing); err != nil {
		return nil, err
	}
	sess.Refresh(existing, closed)

	return existing, nil
}

// releaseSuperseded returns the unit a session claimed when the guest's
// tickets were issued through another session in the meantime.
func (s *AdmissionService) releaseSuperseded(ctx context.Context, sess *domain.AdmissionSession, existing *domain.Rsvp) error {
	if sess.State != domain.StateIssuing || existing == nil || !existing.HasTickets() {
		return nil
	}

	if err := s.config.ReleaseTicket(ctx, sess.TierID); err != nil {
		return err
	}
	zap.L().Info("claimed ticket released",
		zap.String("guest", sess.GuestID),
		zap.String("tier", sess.TierID),
		zap.String("session", sess.ID),
	)

	return nil
}

func (s *AdmissionService) findRsvp(ctx context.Context, guestID string) (*domain.Rsvp, error) {
	rsvp, err := s.rsvps.FindByGuestID(ctx, guestID)
	if errors.Is(err, repository.ErrRsvpNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("s.rsvps.FindByGuestID -> %w", err)
	}

	return &rsvp, nil
}

func (s *AdmissionService) view(ctx context.Context, sess domain.AdmissionSession, rsvp *domain.Rsvp) (AdmissionView, error) {
	conf, err := s.config.Config(ctx)
	if err != nil {
		return AdmissionView{}, err
	}
	venues, err := s.config.Venues(ctx)
	if err != nil {
		return AdmissionView{}, err
	}
	tiers, err := s.config.Tiers(ctx)
	if err != nil {
		return AdmissionView{}, err
	}

	view := AdmissionView{
		Session:      sess,
		Config:       publicConfig(conf),
		VotingClosed: conf.VotingClosed(s.now()),
		Venues:       venues,
		Tiers:        tiers,
		Rsvp:         rsvp,
	}
	if view.VotingClosed {
		winner, ok, err := s.config.Winner(ctx)
		if err != nil {
			return AdmissionView{}, err
		}
		if ok {
			view.ConfirmedVenue = &winner
		}
	}

	return view, nil
}

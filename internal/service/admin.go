package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-events/invitation-api/internal/domain"
)

const (
	resetCodeTTL = 2 * time.Minute

	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
)

var (
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrInvalidResetCode = errors.New("reset confirmation code is invalid or expired")
	ErrWeakPassword     = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")

	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// Stats is the back office dashboard.
type Stats struct {
	TotalRsvps    int                 `json:"total_rsvps"`
	TotalPax      int                 `json:"total_pax"`
	TicketsIssued int                 `json:"tickets_issued"`
	Votes         []domain.VenueTally `json:"votes"`
	LeadingVenue  *domain.Venue       `json:"leading_venue,omitempty"`
	ForcedWinner  *domain.Venue       `json:"forced_winner,omitempty"`
	GuestsUsed    int                 `json:"guests_used"`
	GuestsTotal   int                 `json:"guests_total"`
	Tiers         []domain.TicketTier `json:"tiers"`
	Scans         int64               `json:"scans"`
}

type AdminService struct {
	creds    AdminCredentials
	events   EventRepository
	config   *ConfigService
	guests   GuestRepository
	rsvps    RsvpRepository
	scans    ScanRepository
	sessions SessionStore
	now      func() time.Time

	mu          sync.Mutex
	resetCode   string
	resetExpiry time.Time
}

func NewAdminService(
	creds AdminCredentials,
	events EventRepository,
	config *ConfigService,
	guests GuestRepository,
	rsvps RsvpRepository,
	scans ScanRepository,
	sessions SessionStore,
) *AdminService {
	return &AdminService{
		creds:    creds,
		events:   events,
		config:   config,
		guests:   guests,
		rsvps:    rsvps,
		scans:    scans,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login checks the configured admin account. The bcrypt comparison runs even
// for an unknown username so both failures take the same time.
func (s *AdminService) Login(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	if s.creds.PasswordHash == "" {
		return ErrWrongCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil || !userOK {
		return ErrWrongCredentials
	}

	return nil
}

func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	conf, err := s.config.Config(ctx)
	if err != nil {
		return Stats{}, err
	}
	venues, err := s.config.Venues(ctx)
	if err != nil {
		return Stats{}, err
	}
	tiers, err := s.config.Tiers(ctx)
	if err != nil {
		return Stats{}, err
	}
	rsvps, err := s.rsvps.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("s.rsvps.List -> %w", err)
	}
	guests, err := s.guests.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("s.guests.List -> %w", err)
	}
	scans, err := s.scans.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("s.scans.Count -> %w", err)
	}

	stats := Stats{
		TotalRsvps:  len(rsvps),
		Votes:       domain.TallyVotes(venues, rsvps),
		GuestsTotal: len(guests),
		Tiers:       tiers,
		Scans:       scans,
	}
	for _, r := range rsvps {
		if r.HasTickets() {
			stats.TotalPax += r.Pax()
			stats.TicketsIssued += len(r.TicketIDs)
		}
	}
	for _, g := range guests {
		if g.Used {
			stats.GuestsUsed++
		}
	}
	if leader, ok := domain.LeadingVenue(venues, rsvps); ok {
		stats.LeadingVenue = &leader
	}
	if conf.WinningVenueID != nil {
		if forced, ok := domain.FindVenue(venues, *conf.WinningVenueID); ok {
			stats.ForcedWinner = &forced
		}
	}

	return stats, nil
}

func (s *AdminService) Rsvps(ctx context.Context) ([]domain.Rsvp, error) {
	rsvps, err := s.rsvps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.rsvps.List -> %w", err)
	}

	return rsvps, nil
}

// RequestReset issues the code that ConfirmReset must echo back. A new
// request replaces any pending code.
func (s *AdminService) RequestReset() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetCode = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	s.resetExpiry = s.now().Add(resetCodeTTL)
	zap.L().Warn("factory reset requested", zap.Time("expires_at", s.resetExpiry))

	return s.resetCode, s.resetExpiry
}

// ConfirmReset wipes submissions, tickets and scans, clears the guests'
// arrival flags and restores the default tier stock.
func (s *AdminService) ConfirmReset(ctx context.Context, code string) error {
	s.mu.Lock()
	valid := s.resetCode != "" &&
		s.now().Before(s.resetExpiry) &&
		subtle.ConstantTimeCompare([]byte(strings.ToUpper(strings.TrimSpace(code))), []byte(s.resetCode)) == 1
	if valid {
		s.resetCode = ""
	}
	s.mu.Unlock()
	if !valid {
		return ErrInvalidResetCode
	}

	stocks := make(map[string]int)
	for _, t := range domain.DefaultTiers() {
		stocks[t.ID] = t.Stock
	}
	if err := s.events.ResetAll(ctx, stocks); err != nil {
		return fmt.Errorf("s.events.ResetAll -> %w", err)
	}
	s.sessions.Clear()
	s.config.publishTiers(ctx)
	zap.L().Warn("factory reset completed")

	return nil
}

// HashPassword produces the bcrypt hash stored as admin.password_hash.
func HashPassword(password string) (string, error) {
	ok, err := passwordExp.MatchString(password)
	if err != nil {
		return "", fmt.Errorf("passwordExp.MatchString -> %w", err)
	}
	if !ok {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}

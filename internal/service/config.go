package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/realtime"
	"github.com/lumina-events/invitation-api/internal/repository"
)

var (
	ErrVenueExists   = repository.ErrVenueExists
	ErrVenueNotFound = repository.ErrVenueNotFound
	ErrTierNotFound  = repository.ErrTierNotFound

	ErrInvalidCapacity = errors.New("max capacity must be positive")
	ErrUnknownWinner   = errors.New("winning venue does not exist")
)

type EventRepository interface {
	GetConfig(ctx context.Context) (domain.EventConfig, error)
	SaveConfig(ctx context.Context, conf domain.EventConfig) error
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	FindVenue(ctx context.Context, id string) (domain.Venue, error)
	CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	SeedVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	UpdateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
	CreateTier(ctx context.Context, tier domain.TicketTier) (domain.TicketTier, error)
	ListTiers(ctx context.Context) ([]domain.TicketTier, error)
	FindTier(ctx context.Context, id string) (domain.TicketTier, error)
	SetStocks(ctx context.Context, stocks map[string]int) error
	ClaimTicket(ctx context.Context, tierID string) (int, error)
	ReleaseTicket(ctx context.Context, tierID string) error
	ResetAll(ctx context.Context, stocks map[string]int) error
}

type VoteLister interface {
	List(ctx context.Context) ([]domain.Rsvp, error)
}

type Publisher interface {
	Publish(kind string, payload any)
}

// ConfigService owns the authoritative event configuration. Every update
// replaces the in-memory snapshot and is pushed to connected clients.
type ConfigService struct {
	repo  EventRepository
	votes VoteLister
	pub   Publisher
	now   func() time.Time

	mu     sync.RWMutex
	conf   domain.EventConfig
	loaded bool
}

func NewConfigService(repo EventRepository, votes VoteLister, pub Publisher) *ConfigService {
	return &ConfigService{
		repo:  repo,
		votes: votes,
		pub:   pub,
		now:   time.Now,
	}
}

// Config returns the current snapshot, loading it on first use. A missing
// config row is created from defaults.
func (s *ConfigService) Config(ctx context.Context) (domain.EventConfig, error) {
	s.mu.RLock()
	if s.loaded {
		conf := s.conf
		s.mu.RUnlock()
		return conf, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.conf, nil
	}

	conf, err := s.repo.GetConfig(ctx)
	if errors.Is(err, repository.ErrConfigNotFound) {
		conf = domain.DefaultEventConfig(s.now())
		err = s.repo.SaveConfig(ctx, conf)
	}
	if err != nil {
		return domain.EventConfig{}, fmt.Errorf("s.repo.GetConfig -> %w", err)
	}

	s.conf = conf
	s.loaded = true

	return conf, nil
}

// Reload drops the snapshot so the next read goes to storage.
func (s *ConfigService) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func (s *ConfigService) VotingClosed(ctx context.Context) (bool, error) {
	conf, err := s.Config(ctx)
	if err != nil {
		return false, err
	}

	return conf.VotingClosed(s.now()), nil
}

// UpdateConfig persists conf as a whole, recomputes tier stock from
// MaxCapacity and broadcasts both.
func (s *ConfigService) UpdateConfig(ctx context.Context, conf domain.EventConfig) (domain.EventConfig, error) {
	if conf.MaxCapacity <= 0 {
		return domain.EventConfig{}, ErrInvalidCapacity
	}
	if conf.WinningVenueID != nil {
		if *conf.WinningVenueID == "" {
			conf.WinningVenueID = nil
		} else if _, err := s.repo.FindVenue(ctx, *conf.WinningVenueID); err != nil {
			if errors.Is(err, repository.ErrVenueNotFound) {
				return domain.EventConfig{}, ErrUnknownWinner
			}

			return domain.EventConfig{}, fmt.Errorf("s.repo.FindVenue -> %w", err)
		}
	}

	s.mu.Lock()
	if err := s.repo.SaveConfig(ctx, conf); err != nil {
		s.mu.Unlock()
		return domain.EventConfig{}, fmt.Errorf("s.repo.SaveConfig -> %w", err)
	}
	s.conf = conf
	s.loaded = true
	s.mu.Unlock()

	s.pub.Publish(realtime.EventConfig, publicConfig(conf))

	if err := s.RecomputeStock(ctx, conf.MaxCapacity); err != nil {
		return conf, err
	}

	return conf, nil
}

func (s *ConfigService) RecomputeStock(ctx context.Context, maxCapacity int) error {
	if err := s.repo.SetStocks(ctx, domain.StockPlan(maxCapacity)); err != nil {
		return fmt.Errorf("s.repo.SetStocks -> %w", err)
	}
	s.publishTiers(ctx)

	return nil
}

func (s *ConfigService) Venues(ctx context.Context) ([]domain.Venue, error) {
	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListVenues -> %w", err)
	}

	return venues, nil
}

func (s *ConfigService) FindVenue(ctx context.Context, id string) (domain.Venue, error) {
	venue, err := s.repo.FindVenue(ctx, id)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.FindVenue -> %w", err)
	}

	return venue, nil
}

// CreateVenue stores a new venue. An empty ID gets a generated one.
func (s *ConfigService) CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}

	created, err := s.repo.CreateVenue(ctx, venue)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.CreateVenue -> %w", err)
	}
	s.publishVenues(ctx)

	return created, nil
}

func (s *ConfigService) UpdateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	updated, err := s.repo.UpdateVenue(ctx, venue)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.UpdateVenue -> %w", err)
	}
	s.publishVenues(ctx)

	return updated, nil
}

func (s *ConfigService) DeleteVenue(ctx context.Context, id string) error {
	if err := s.repo.DeleteVenue(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteVenue -> %w", err)
	}
	s.publishVenues(ctx)

	return nil
}

func (s *ConfigService) Tiers(ctx context.Context) ([]domain.TicketTier, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTiers -> %w", err)
	}

	return tiers, nil
}

func (s *ConfigService) FindTier(ctx context.Context, id string) (domain.TicketTier, error) {
	tier, err := s.repo.FindTier(ctx, id)
	if err != nil {
		return domain.TicketTier{}, fmt.Errorf("s.repo.FindTier -> %w", err)
	}

	return tier, nil
}

// ClaimTicket runs the atomic stock claim and broadcasts the new stock on success.
func (s *ConfigService) ClaimTicket(ctx context.Context, tierID string) (int, error) {
	stock, err := s.repo.ClaimTicket(ctx, tierID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.ClaimTicket -> %w", err)
	}
	if stock != domain.ClaimExhausted {
		s.publishTiers(ctx)
	}

	return stock, nil
}

// ReleaseTicket returns a claimed unit that will never back a ticket.
func (s *ConfigService) ReleaseTicket(ctx context.Context, tierID string) error {
	if err := s.repo.ReleaseTicket(ctx, tierID); err != nil {
		return fmt.Errorf("s.repo.ReleaseTicket -> %w", err)
	}
	s.publishTiers(ctx)

	return nil
}

// Winner resolves the confirmed venue from the forced winner or the vote tally.
func (s *ConfigService) Winner(ctx context.Context) (domain.Venue, bool, error) {
	conf, err := s.Config(ctx)
	if err != nil {
		return domain.Venue{}, false, err
	}
	venues, err := s.Venues(ctx)
	if err != nil {
		return domain.Venue{}, false, err
	}
	rsvps, err := s.votes.List(ctx)
	if err != nil {
		return domain.Venue{}, false, fmt.Errorf("s.votes.List -> %w", err)
	}

	venue, ok := domain.WinningVenue(conf, venues, rsvps)

	return venue, ok, nil
}

// Seed inserts default config, venues and tiers where storage is empty.
func (s *ConfigService) Seed(ctx context.Context) error {
	if _, err := s.Config(ctx); err != nil {
		return err
	}

	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.ListVenues -> %w", err)
	}
	if len(venues) == 0 {
		for _, v := range domain.DefaultVenues() {
			if _, err := s.repo.SeedVenue(ctx, v); err != nil && !errors.Is(err, repository.ErrVenueExists) {
				return fmt.Errorf("s.repo.SeedVenue -> %w", err)
			}
		}
	}

	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.ListTiers -> %w", err)
	}
	if len(tiers) == 0 {
		for _, t := range domain.DefaultTiers() {
			if _, err := s.repo.CreateTier(ctx, t); err != nil && !errors.Is(err, repository.ErrTierExists) {
				return fmt.Errorf("s.repo.CreateTier -> %w", err)
			}
		}
	}
	zap.L().Info("event data seeded", zap.Bool("venues", len(venues) == 0), zap.Bool("tiers", len(tiers) == 0))

	return nil
}

func (s *ConfigService) publishVenues(ctx context.Context) {
	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		zap.L().Warn("failed to load venues for broadcast", zap.Error(err))
		return
	}
	s.pub.Publish(realtime.EventVenues, venues)
}

func (s *ConfigService) publishTiers(ctx context.Context) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		zap.L().Warn("failed to load tiers for broadcast", zap.Error(err))
		return
	}
	s.pub.Publish(realtime.EventTiers, tiers)
}

// publicConfig strips fields guests must not see.
func publicConfig(conf domain.EventConfig) domain.EventConfig {
	conf.GuestPasscode = ""
	return conf
}

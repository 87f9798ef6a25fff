package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
)

// EventSettingsKey is the config row holding the serialized EventConfig.
const EventSettingsKey = "event_settings"

var (
	ErrConfigNotFound = dao.ErrConfigNotFound
	ErrVenueExists    = dao.ErrVenueExists
	ErrVenueNotFound  = dao.ErrVenueNotFound
	ErrTierExists     = dao.ErrTierExists
	ErrTierNotFound   = dao.ErrTierNotFound
)

type ConfigDAO interface {
	Get(ctx context.Context, key string) (dao.ConfigEntry, error)
	Put(ctx context.Context, entry dao.ConfigEntry) error
}

type VenueDAO interface {
	FindAll(ctx context.Context) ([]dao.Venue, error)
	FindByID(ctx context.Context, id string) (dao.Venue, error)
	Insert(ctx context.Context, venue dao.Venue) (dao.Venue, error)
	Update(ctx context.Context, venue dao.Venue) (dao.Venue, error)
	Delete(ctx context.Context, id string) error
}

type TierDAO interface {
	Insert(ctx context.Context, tier dao.TicketTier) (dao.TicketTier, error)
	FindAll(ctx context.Context) ([]dao.TicketTier, error)
	FindByID(ctx context.Context, id string) (dao.TicketTier, error)
	SetStocks(ctx context.Context, stocks map[string]int) error
	Claim(ctx context.Context, tierID string) (int, error)
	Release(ctx context.Context, tierID string) error
}

type ResetDAO interface {
	Reset(ctx context.Context, stocks map[string]int) error
}

// EventRepository stores event settings, venues and ticket tiers.
type EventRepository struct {
	configs ConfigDAO
	venues  VenueDAO
	tiers   TierDAO
	reset   ResetDAO
}

func NewEventRepository(configs ConfigDAO, venues VenueDAO, tiers TierDAO, reset ResetDAO) *EventRepository {
	return &EventRepository{
		configs: configs,
		venues:  venues,
		tiers:   tiers,
		reset:   reset,
	}
}

func (r *EventRepository) GetConfig(ctx context.Context) (domain.EventConfig, error) {
	entry, err := r.configs.Get(ctx, EventSettingsKey)
	if err != nil {
		return domain.EventConfig{}, fmt.Errorf("r.configs.Get -> %w", err)
	}

	var conf domain.EventConfig
	if err := json.Unmarshal([]byte(entry.Value), &conf); err != nil {
		return domain.EventConfig{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return conf, nil
}

func (r *EventRepository) SaveConfig(ctx context.Context, conf domain.EventConfig) error {
	raw, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := r.configs.Put(ctx, dao.ConfigEntry{Key: EventSettingsKey, Value: string(raw)}); err != nil {
		return fmt.Errorf("r.configs.Put -> %w", err)
	}

	return nil
}

func (r *EventRepository) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	found, err := r.venues.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.venues.FindAll -> %w", err)
	}

	venues := make([]domain.Venue, 0, len(found))
	for _, v := range found {
		venues = append(venues, r.venueDaoToDomain(v))
	}
	domain.SortVenues(venues)

	return venues, nil
}

func (r *EventRepository) FindVenue(ctx context.Context, id string) (domain.Venue, error) {
	found, err := r.venues.FindByID(ctx, id)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.venues.FindByID -> %w", err)
	}

	return r.venueDaoToDomain(found), nil
}

// CreateVenue appends the venue at the end of the creation order.
func (r *EventRepository) CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	model := r.venueDomainToDao(venue)
	model.Position = -1

	created, err := r.venues.Insert(ctx, model)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.venues.Insert -> %w", err)
	}

	return r.venueDaoToDomain(created), nil
}

// SeedVenue inserts a venue keeping its declared position.
func (r *EventRepository) SeedVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	created, err := r.venues.Insert(ctx, r.venueDomainToDao(venue))
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.venues.Insert -> %w", err)
	}

	return r.venueDaoToDomain(created), nil
}

func (r *EventRepository) UpdateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	updated, err := r.venues.Update(ctx, r.venueDomainToDao(venue))
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.venues.Update -> %w", err)
	}

	return r.venueDaoToDomain(updated), nil
}

func (r *EventRepository) DeleteVenue(ctx context.Context, id string) error {
	if err := r.venues.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.venues.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) CreateTier(ctx context.Context, tier domain.TicketTier) (domain.TicketTier, error) {
	created, err := r.tiers.Insert(ctx, dao.TicketTier{
		ID:          tier.ID,
		Name:        tier.Name,
		Description: tier.Description,
		Stock:       tier.Stock,
		Color:       tier.Color,
		Perks:       tier.Perks,
		Position:    tier.Position,
	})
	if err != nil {
		return domain.TicketTier{}, fmt.Errorf("r.tiers.Insert -> %w", err)
	}

	return r.tierDaoToDomain(created), nil
}

func (r *EventRepository) ListTiers(ctx context.Context) ([]domain.TicketTier, error) {
	found, err := r.tiers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.tiers.FindAll -> %w", err)
	}

	tiers := make([]domain.TicketTier, 0, len(found))
	for _, t := range found {
		tiers = append(tiers, r.tierDaoToDomain(t))
	}

	return tiers, nil
}

func (r *EventRepository) FindTier(ctx context.Context, id string) (domain.TicketTier, error) {
	found, err := r.tiers.FindByID(ctx, id)
	if err != nil {
		return domain.TicketTier{}, fmt.Errorf("r.tiers.FindByID -> %w", err)
	}

	return r.tierDaoToDomain(found), nil
}

func (r *EventRepository) SetStocks(ctx context.Context, stocks map[string]int) error {
	if err := r.tiers.SetStocks(ctx, stocks); err != nil {
		return fmt.Errorf("r.tiers.SetStocks -> %w", err)
	}

	return nil
}

// ClaimTicket returns the remaining stock or domain.ClaimExhausted.
func (r *EventRepository) ClaimTicket(ctx context.Context, tierID string) (int, error) {
	stock, err := r.tiers.Claim(ctx, tierID)
	if err != nil {
		return 0, fmt.Errorf("r.tiers.Claim -> %w", err)
	}
	if stock == dao.ClaimExhausted {
		return domain.ClaimExhausted, nil
	}

	return stock, nil
}

func (r *EventRepository) ReleaseTicket(ctx context.Context, tierID string) error {
	if err := r.tiers.Release(ctx, tierID); err != nil {
		return fmt.Errorf("r.tiers.Release -> %w", err)
	}

	return nil
}

// ResetAll wipes guest activity and restores tier stock.
func (r *EventRepository) ResetAll(ctx context.Context, stocks map[string]int) error {
	if err := r.reset.Reset(ctx, stocks); err != nil {
		return fmt.Errorf("r.reset.Reset -> %w", err)
	}

	return nil
}

func (r *EventRepository) venueDaoToDomain(v dao.Venue) domain.Venue {
	return domain.Venue{
		ID:          v.ID,
		Name:        v.Name,
		Vibe:        v.Vibe,
		MinSpend:    v.MinSpend,
		ClosingTime: v.ClosingTime,
		Description: v.Description,
		Perks:       v.Perks,
		Color:       v.Color,
		VideoURL:    v.VideoURL,
		MapsURL:     v.MapsURL,
		Position:    v.Position,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func (r *EventRepository) venueDomainToDao(v domain.Venue) dao.Venue {
	return dao.Venue{
		ID:          v.ID,
		Name:        v.Name,
		Vibe:        v.Vibe,
		MinSpend:    v.MinSpend,
		ClosingTime: v.ClosingTime,
		Description: v.Description,
		Perks:       v.Perks,
		Color:       v.Color,
		VideoURL:    v.VideoURL,
		MapsURL:     v.MapsURL,
		Position:    v.Position,
	}
}

func (r *EventRepository) tierDaoToDomain(t dao.TicketTier) domain.TicketTier {
	return domain.TicketTier{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Stock:       t.Stock,
		Color:       t.Color,
		Perks:       t.Perks,
		Position:    t.Position,
		UpdatedAt:   t.UpdatedAt,
	}
}

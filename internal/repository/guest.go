package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
)

var (
	ErrGuestPhoneExists = dao.ErrGuestPhoneExists
	ErrGuestNotFound    = dao.ErrGuestNotFound
)

type GuestDAO interface {
	Insert(ctx context.Context, guest dao.Guest) (dao.Guest, error)
	FindAll(ctx context.Context) ([]dao.Guest, error)
	FindByID(ctx context.Context, id string) (dao.Guest, error)
	FindByPhone(ctx context.Context, phone string) (dao.Guest, error)
	SetUsed(ctx context.Context, id string, usedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type GuestRepository struct {
	dao GuestDAO
}

func NewGuestRepository(dao GuestDAO) *GuestRepository {
	return &GuestRepository{
		dao: dao,
	}
}

func (r *GuestRepository) Create(ctx context.Context, guest domain.Guest) (domain.Guest, error) {
	created, err := r.dao.Insert(ctx, dao.Guest{
		ID:     guest.ID,
		Name:   guest.Name,
		Phone:  guest.Phone,
		Used:   guest.Used,
		UsedAt: guest.UsedAt,
	})
	if err != nil {
		return domain.Guest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *GuestRepository) List(ctx context.Context) ([]domain.Guest, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	guests := make([]domain.Guest, 0, len(found))
	for _, g := range found {
		guests = append(guests, r.daoToDomain(g))
	}

	return guests, nil
}

func (r *GuestRepository) FindByID(ctx context.Context, id string) (domain.Guest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Guest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *GuestRepository) FindByPhone(ctx context.Context, phone string) (domain.Guest, error) {
	found, err := r.dao.FindByPhone(ctx, phone)
	if err != nil {
		return domain.Guest{}, fmt.Errorf("r.dao.FindByPhone -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *GuestRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	if err := r.dao.SetUsed(ctx, id, &at); err != nil {
		return fmt.Errorf("r.dao.SetUsed -> %w", err)
	}

	return nil
}

func (r *GuestRepository) Reset(ctx context.Context, id string) error {
	if err := r.dao.SetUsed(ctx, id, nil); err != nil {
		return fmt.Errorf("r.dao.SetUsed -> %w", err)
	}

	return nil
}

func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *GuestRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return count, nil
}

func (r *GuestRepository) daoToDomain(g dao.Guest) domain.Guest {
	return domain.Guest{
		ID:        g.ID,
		Name:      g.Name,
		Phone:     g.Phone,
		Used:      g.Used,
		UsedAt:    g.UsedAt,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

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
	"github.com/lumina-events/invitation-api/internal/repository"
)

var (
	ErrGuestPhoneExists = repository.ErrGuestPhoneExists
	ErrGuestNotFound    = repository.ErrGuestNotFound

	ErrInvalidPhone = errors.New("phone must be 9 digits starting with 9")
	ErrEmptyName    = errors.New("name is required")
)

type GuestRepository interface {
	Create(ctx context.Context, guest domain.Guest) (domain.Guest, error)
	List(ctx context.Context) ([]domain.Guest, error)
	FindByID(ctx context.Context, id string) (domain.Guest, error)
	FindByPhone(ctx context.Context, phone string) (domain.Guest, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	Reset(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type GuestService struct {
	repo GuestRepository
}

func NewGuestService(repo GuestRepository) *GuestService {
	return &GuestService{
		repo: repo,
	}
}

func (s *GuestService) List(ctx context.Context) ([]domain.Guest, error) {
	guests, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return guests, nil
}

// Create adds a guest to the directory. Formatting characters in phone are dropped.
func (s *GuestService) Create(ctx context.Context, name, phone string) (domain.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Guest{}, ErrEmptyName
	}
	phone = domain.NormalizePhone(phone)
	if !domain.IsValidPhone(phone) {
		return domain.Guest{}, ErrInvalidPhone
	}

	created, err := s.repo.Create(ctx, domain.Guest{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
	})
	if err != nil {
		return domain.Guest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *GuestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Reset clears the used flag so the guest shows as not yet arrived.
func (s *GuestService) Reset(ctx context.Context, id string) error {
	if err := s.repo.Reset(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Reset -> %w", err)
	}

	return nil
}

// Seed inserts the default guests when the directory is empty.
func (s *GuestService) Seed(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.Count -> %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, g := range domain.DefaultGuests() {
		if _, err := s.repo.Create(ctx, g); err != nil && !errors.Is(err, repository.ErrGuestPhoneExists) {
			return fmt.Errorf("s.repo.Create -> %w", err)
		}
	}
	zap.L().Info("guest directory seeded", zap.Int("count", len(domain.DefaultGuests())))

	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
)

var (
	ErrScanExists   = dao.ErrScanExists
	ErrScanNotFound = dao.ErrScanNotFound
)

type ScanDAO interface {
	Insert(ctx context.Context, scan dao.TicketScan) (dao.TicketScan, error)
	FindByTicketID(ctx context.Context, ticketID string) (dao.TicketScan, error)
	FindAll(ctx context.Context) ([]dao.TicketScan, error)
	Count(ctx context.Context) (int64, error)
}

type ScanRepository struct {
	dao ScanDAO
}

func NewScanRepository(dao ScanDAO) *ScanRepository {
	return &ScanRepository{
		dao: dao,
	}
}

func (r *ScanRepository) Create(ctx context.Context, scan domain.TicketScan) (domain.TicketScan, error) {
	created, err := r.dao.Insert(ctx, dao.TicketScan{
		TicketID:   scan.TicketID,
		GuestName:  scan.GuestName,
		GuestEmail: scan.GuestEmail,
		TierName:   scan.TierName,
		ScannedAt:  scan.ScannedAt,
	})
	if err != nil {
		return domain.TicketScan{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ScanRepository) FindByTicketID(ctx context.Context, ticketID string) (domain.TicketScan, error) {
	found, err := r.dao.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.TicketScan{}, fmt.Errorf("r.dao.FindByTicketID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ScanRepository) List(ctx context.Context) ([]domain.TicketScan, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	scans := make([]domain.TicketScan, 0, len(found))
	for _, s := range found {
		scans = append(scans, r.daoToDomain(s))
	}

	return scans, nil
}

func (r *ScanRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return count, nil
}

func (r *ScanRepository) daoToDomain(s dao.TicketScan) domain.TicketScan {
	return domain.TicketScan{
		ID:         s.ID,
		TicketID:   s.TicketID,
		GuestName:  s.GuestName,
		GuestEmail: s.GuestEmail,
		TierName:   s.TierName,
		ScannedAt:  s.ScannedAt,
	}
}

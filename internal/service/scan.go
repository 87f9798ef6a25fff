package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/pkg/qr"
	"github.com/lumina-events/invitation-api/internal/pkg/ticketid"
	"github.com/lumina-events/invitation-api/internal/repository"
)

var (
	ErrScanNotFound = repository.ErrScanNotFound
	ErrNoQRCode     = qr.ErrNoCode
)

type ScanRepository interface {
	Create(ctx context.Context, scan domain.TicketScan) (domain.TicketScan, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.TicketScan, error)
	List(ctx context.Context) ([]domain.TicketScan, error)
	Count(ctx context.Context) (int64, error)
}

// ScanService admits tickets at the door. Each ticket is admitted once; the
// scan log is append only.
type ScanService struct {
	scans  ScanRepository
	rsvps  RsvpRepository
	config *ConfigService
	notify Notifier
	now    func() time.Time
}

func NewScanService(scans ScanRepository, rsvps RsvpRepository, config *ConfigService, notify Notifier) *ScanService {
	return &ScanService{
		scans:  scans,
		rsvps:  rsvps,
		config: config,
		notify: notify,
		now:    time.Now,
	}
}

// Scan checks ticketID against issued tickets and the scan log. Unknown or
// malformed identifiers yield a not_found result rather than an error.
func (s *ScanService) Scan(ctx context.Context, ticketID string) (domain.ScanResult, error) {
	ticketID = strings.ToUpper(strings.TrimSpace(ticketID))
	result := domain.ScanResult{Status: domain.ScanNotFound, TicketID: ticketID}
	if !ticketid.Valid(ticketID) {
		return result, nil
	}

	rsvp, err := s.rsvps.FindByTicketID(ctx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return result, nil
	}
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("s.rsvps.FindByTicketID -> %w", err)
	}
	result.Rsvp = &rsvp
	result.TierName = s.tierName(ctx, rsvp)

	prior, err := s.scans.FindByTicketID(ctx, ticketID)
	switch {
	case err == nil:
		return alreadyUsed(result, prior), nil
	case !errors.Is(err, repository.ErrScanNotFound):
		return domain.ScanResult{}, fmt.Errorf("s.scans.FindByTicketID -> %w", err)
	}

	created, err := s.scans.Create(ctx, domain.TicketScan{
		TicketID:   ticketID,
		GuestName:  rsvp.FullName(),
		GuestEmail: rsvp.Email,
		TierName:   result.TierName,
		ScannedAt:  s.now(),
	})
	if errors.Is(err, repository.ErrScanExists) {
		// Another door admitted the same ticket between the check and the insert.
		prior, err := s.scans.FindByTicketID(ctx, ticketID)
		if err != nil {
			return domain.ScanResult{}, fmt.Errorf("s.scans.FindByTicketID -> %w", err)
		}
		return alreadyUsed(result, prior), nil
	}
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("s.scans.Create -> %w", err)
	}

	result.Status = domain.ScanAdmitted
	result.ScannedAt = &created.ScannedAt
	zap.L().Info("ticket admitted", zap.String("ticket", ticketID), zap.String("guest", rsvp.FullName()))
	s.notify.TicketScanned(result)

	return result, nil
}

// ScanImage decodes a QR code from an uploaded photo and scans it.
func (s *ScanService) ScanImage(ctx context.Context, r io.Reader) (domain.ScanResult, error) {
	content, err := qr.Decode(r)
	if err != nil {
		if errors.Is(err, qr.ErrNoCode) {
			return domain.ScanResult{}, ErrNoQRCode
		}

		return domain.ScanResult{}, fmt.Errorf("qr.Decode -> %w", err)
	}

	return s.Scan(ctx, content)
}

func (s *ScanService) List(ctx context.Context) ([]domain.TicketScan, error) {
	scans, err := s.scans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.scans.List -> %w", err)
	}

	return scans, nil
}

func (s *ScanService) tierName(ctx context.Context, rsvp domain.Rsvp) string {
	if rsvp.SelectedTierID == nil {
		return ""
	}

	tier, err := s.config.FindTier(ctx, *rsvp.SelectedTierID)
	if err != nil {
		zap.L().Warn("tier lookup failed during scan", zap.String("tier", *rsvp.SelectedTierID), zap.Error(err))
		return *rsvp.SelectedTierID
	}

	return tier.Name
}

func alreadyUsed(result domain.ScanResult, prior domain.TicketScan) domain.ScanResult {
	scannedAt := prior.ScannedAt
	result.Status = domain.ScanAlreadyUsed
	result.ScannedAt = &scannedAt

	return result
}

package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumina-events/invitation-api/internal/db"
	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/repository"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
	"github.com/lumina-events/invitation-api/internal/session"
)

const (
	carlosPhone = "987654321"
	mariaPhone  = "912345678"
	alonsoPhone = "956781234"
)

type recordingPublisher struct {
	mu    sync.Mutex
	kinds []string
}

func (p *recordingPublisher) Publish(kind string, _ any) {
	p.mu.Lock()
	p.kinds = append(p.kinds, kind)
	p.mu.Unlock()
}

func (p *recordingPublisher) Kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.kinds...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	issued  []domain.Rsvp
	scanned []domain.ScanResult
}

func (n *recordingNotifier) TicketsIssued(rsvp domain.Rsvp, _ domain.TicketTier) {
	n.mu.Lock()
	n.issued = append(n.issued, rsvp)
	n.mu.Unlock()
}

func (n *recordingNotifier) TicketScanned(result domain.ScanResult) {
	n.mu.Lock()
	n.scanned = append(n.scanned, result)
	n.mu.Unlock()
}

type fixture struct {
	events *repository.EventRepository
	guests *repository.GuestRepository
	rsvps  *repository.RsvpRepository
	scans  *repository.ScanRepository
	store  *session.Store
	pub    *recordingPublisher
	notes  *recordingNotifier

	config    *ConfigService
	guestSvc  *GuestService
	admission *AdmissionService
	scan      *ScanService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		events: repository.NewEventRepository(dao.NewConfigDAO(gdb), dao.NewVenueDAO(gdb), dao.NewTierDAO(gdb), dao.NewResetDAO(gdb)),
		guests: repository.NewGuestRepository(dao.NewGuestDAO(gdb)),
		rsvps:  repository.NewRsvpRepository(dao.NewRsvpDAO(gdb)),
		scans:  repository.NewScanRepository(dao.NewScanDAO(gdb)),
		store:  session.NewStore(2 * time.Hour),
		pub:    &recordingPublisher{},
		notes:  &recordingNotifier{},
	}
	f.config = NewConfigService(f.events, f.rsvps, f.pub)
	f.guestSvc = NewGuestService(f.guests)
	f.admission = NewAdmissionService(f.store, f.guests, f.rsvps, f.config, f.notes)
	f.scan = NewScanService(f.scans, f.rsvps, f.config, f.notes)
	f.admin = NewAdminService(AdminCredentials{}, f.events, f.config, f.guests, f.rsvps, f.scans, f.store)

	ctx := context.Background()
	require.NoError(t, f.config.Seed(ctx))
	require.NoError(t, f.guestSvc.Seed(ctx))

	return f
}

// closeVoting moves the deadline into the past and restores the default stock.
func (f *fixture) closeVoting(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	conf, err := f.config.Config(ctx)
	require.NoError(t, err)
	conf.VotingDeadline = time.Now().Add(-time.Hour)
	_, err = f.config.UpdateConfig(ctx, conf)
	require.NoError(t, err)
	f.setStocks(t, defaultStocks())
}

func (f *fixture) setStocks(t *testing.T, stocks map[string]int) {
	t.Helper()
	require.NoError(t, f.events.SetStocks(context.Background(), stocks))
}

func (f *fixture) verified(t *testing.T, phone string) string {
	t.Helper()
	ctx := context.Background()

	view, err := f.admission.StartSession(ctx)
	require.NoError(t, err)
	_, err = f.admission.Verify(ctx, view.Session.ID, phone)
	require.NoError(t, err)

	return view.Session.ID
}

// toClaiming verifies phone and passes the mini game for tierID.
func (f *fixture) toClaiming(t *testing.T, phone, tierID string) (string, string) {
	t.Helper()
	ctx := context.Background()

	id := f.verified(t, phone)
	view, err := f.admission.SelectTier(ctx, id, tierID)
	require.NoError(t, err)
	require.NotNil(t, view.Session.Challenge)

	view, err = f.admission.CompleteGame(ctx, id, view.Session.Challenge.ID, view.Session.Challenge.Targets)
	require.NoError(t, err)
	require.NotEmpty(t, view.ClaimToken)

	return id, view.ClaimToken
}

// issued walks phone all the way to issued tickets.
func (f *fixture) issued(t *testing.T, phone, tierID string, in IssueInput) AdmissionView {
	t.Helper()
	ctx := context.Background()

	id, token := f.toClaiming(t, phone, tierID)
	_, err := f.admission.Claim(ctx, id, token)
	require.NoError(t, err)
	view, err := f.admission.Issue(ctx, id, in)
	require.NoError(t, err)

	return view
}

func defaultStocks() map[string]int {
	stocks := make(map[string]int)
	for _, t := range domain.DefaultTiers() {
		stocks[t.ID] = t.Stock
	}

	return stocks
}

func stockOf(tiers []domain.TicketTier, id string) int {
	for _, t := range tiers {
		if t.ID == id {
			return t.Stock
		}
	}

	return -1
}

func ptr[T any](v T) *T {
	return &v
}

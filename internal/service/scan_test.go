package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/pkg/qr"
)

func TestScanService_Scan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	view := f.issued(t, mariaPhone, domain.TierPlatinum, IssueInput{
		GuestCount: 1,
		FirstName:  "María",
		LastName:   "Torres",
		Email:      "maria@example.com",
	})
	ticket := view.Rsvp.TicketIDs[0]

	result, err := f.scan.Scan(ctx, " "+ticket+" ")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanAdmitted, result.Status)
	assert.Equal(t, ticket, result.TicketID)
	require.NotNil(t, result.Rsvp)
	assert.Equal(t, "María Torres", result.Rsvp.FullName())
	assert.Equal(t, "PLATINUM VIP", result.TierName)
	require.NotNil(t, result.ScannedAt)
	first := *result.ScannedAt

	result, err = f.scan.Scan(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanAlreadyUsed, result.Status)
	require.NotNil(t, result.ScannedAt)
	assert.True(t, first.Equal(*result.ScannedAt))

	companion, err := f.scan.Scan(ctx, view.Rsvp.TicketIDs[1])
	require.NoError(t, err)
	assert.Equal(t, domain.ScanAdmitted, companion.Status)

	assert.Len(t, f.notes.scanned, 2)

	scans, err := f.scan.List(ctx)
	require.NoError(t, err)
	assert.Len(t, scans, 2)
}

func TestScanService_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"", "garbage", "LUM-CARL-ABCDEFGHIJ-0"} {
		result, err := f.scan.Scan(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ScanNotFound, result.Status, id)
		assert.Nil(t, result.Rsvp)
	}
}

func TestScanService_ConcurrentScansAdmitOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	view := f.issued(t, carlosPhone, domain.TierStandard, IssueInput{FirstName: "Carlos", Email: "carlos@example.com"})
	ticket := view.Rsvp.TicketIDs[0]

	const doors = 4
	statuses := make([]domain.ScanStatus, doors)

	var wg sync.WaitGroup
	for i := 0; i < doors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.scan.Scan(ctx, ticket)
			assert.NoError(t, err)
			statuses[i] = result.Status
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, s := range statuses {
		if s == domain.ScanAdmitted {
			admitted++
		} else {
			assert.Equal(t, domain.ScanAlreadyUsed, s)
		}
	}
	assert.Equal(t, 1, admitted)
}

func TestScanService_ScanImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	view := f.issued(t, alonsoPhone, domain.TierEmerald, IssueInput{FirstName: "Alonso", Email: "alonso@example.com"})

	png, err := qr.Encode(view.Rsvp.TicketIDs[0], 300)
	require.NoError(t, err)

	result, err := f.scan.ScanImage(ctx, bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, domain.ScanAdmitted, result.Status)
	assert.Equal(t, "EMERALD GUEST", result.TierName)
}

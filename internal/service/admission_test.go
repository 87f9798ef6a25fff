package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-events/invitation-api/internal/domain"
)

func TestAdmission_CarlosVotesLounge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start, err := f.admission.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateUnverified, start.Session.State)
	assert.Empty(t, start.Config.GuestPasscode)

	view, err := f.admission.Verify(ctx, start.Session.ID, carlosPhone)
	require.NoError(t, err)
	assert.Equal(t, domain.StateVoting, view.Session.State)
	assert.False(t, view.VotingClosed)

	carlos, err := f.guests.FindByPhone(ctx, carlosPhone)
	require.NoError(t, err)
	assert.True(t, carlos.Used)
	require.NotNil(t, carlos.UsedAt)

	view, err = f.admission.Vote(ctx, start.Session.ID, VoteInput{
		VenueID:   "lounge",
		FirstName: "Carlos",
		LastName:  "Quispe",
		Email:     "carlos@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingClose, view.Session.State)
	require.NotNil(t, view.Rsvp)
	require.NotNil(t, view.Rsvp.SelectedVenueID)
	assert.Equal(t, "lounge", *view.Rsvp.SelectedVenueID)
	assert.Empty(t, view.Rsvp.TicketIDs)

	again := f.verified(t, carlosPhone)
	view, err = f.admission.Session(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingClose, view.Session.State)

	_, err = f.admission.Vote(ctx, again, VoteInput{VenueID: "club", FirstName: "Carlos", Email: "carlos@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	rsvps, err := f.rsvps.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rsvps, 1)
}

func TestAdmission_VerifyNotFoundAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start, err := f.admission.StartSession(ctx)
	require.NoError(t, err)

	for _, phone := range []string{"", "12345678", "887654321", "98765432a", "9876543210"} {
		_, err := f.admission.Verify(ctx, start.Session.ID, phone)
		assert.ErrorIs(t, err, ErrInvalidPhone, phone)
	}

	_, err = f.admission.Verify(ctx, start.Session.ID, "900000000")
	assert.ErrorIs(t, err, ErrGuestNotFound)

	view, err := f.admission.Verify(ctx, start.Session.ID, " "+mariaPhone+" ")
	require.NoError(t, err)
	assert.Equal(t, "María", view.Session.GuestName)
}

func TestAdmission_VerifyRateLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	now := time.Now()
	f.admission.now = func() time.Time { return now }

	start, err := f.admission.StartSession(ctx)
	require.NoError(t, err)
	id := start.Session.ID

	_, err = f.admission.Verify(ctx, id, "123")
	require.ErrorIs(t, err, ErrInvalidPhone)

	for i := 0; i < domain.MaxFailedVerifications; i++ {
		_, err := f.admission.Verify(ctx, id, "900000000")
		require.ErrorIs(t, err, ErrGuestNotFound)
	}

	_, err = f.admission.Verify(ctx, id, carlosPhone)
	require.ErrorIs(t, err, ErrRateLimited)
	var limited *RateLimitError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, domain.VerificationCooldown, limited.RetryAfter)

	_, err = f.admission.Verify(ctx, id, "abc")
	assert.ErrorIs(t, err, ErrRateLimited)

	other := f.verified(t, mariaPhone)
	assert.NotEmpty(t, other)

	now = now.Add(domain.VerificationCooldown + time.Second)
	view, err := f.admission.Verify(ctx, id, carlosPhone)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", view.Session.GuestName)
}

func TestAdmission_ForcedWinnerFullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id := f.verified(t, carlosPhone)
	_, err := f.admission.Vote(ctx, id, VoteInput{VenueID: "lounge", FirstName: "Carlos", Email: "carlos@example.com"})
	require.NoError(t, err)

	conf, err := f.config.Config(ctx)
	require.NoError(t, err)
	conf.WinningVenueID = ptr("club")
	_, err = f.config.UpdateConfig(ctx, conf)
	require.NoError(t, err)
	f.setStocks(t, defaultStocks())

	view, err := f.admission.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateTierSelecting, view.Session.State)
	assert.True(t, view.VotingClosed)
	require.NotNil(t, view.ConfirmedVenue)
	assert.Equal(t, "club", view.ConfirmedVenue.ID)

	_, err = f.admission.Vote(ctx, id, VoteInput{VenueID: "lounge", FirstName: "Carlos", Email: "c@example.com"})
	assert.ErrorIs(t, err, ErrVotingClosed)

	view, err = f.admission.SelectTier(ctx, id, domain.TierEmerald)
	require.NoError(t, err)
	assert.Equal(t, domain.StateMiniGame, view.Session.State)
	require.NotNil(t, view.Session.Challenge)
	assert.Equal(t, 10, view.Session.Challenge.Targets)
	challengeID := view.Session.Challenge.ID

	_, err = f.admission.CompleteGame(ctx, id, challengeID, 3)
	require.ErrorIs(t, err, ErrGameFailed)
	_, err = f.admission.CompleteGame(ctx, id, "other", 10)
	require.ErrorIs(t, err, ErrChallengeMismatch)

	view, err = f.admission.CompleteGame(ctx, id, challengeID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.StateClaiming, view.Session.State)
	token := view.ClaimToken

	_, err = f.admission.Claim(ctx, id, "forged")
	require.ErrorIs(t, err, ErrInvalidClaimToken)

	view, err = f.admission.Claim(ctx, id, token)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIssuing, view.Session.State)
	assert.Equal(t, 11, stockOf(view.Tiers, domain.TierEmerald))

	_, err = f.admission.Issue(ctx, id, IssueInput{GuestCount: domain.MaxCompanions + 1})
	require.ErrorIs(t, err, ErrInvalidGuestCount)

	view, err = f.admission.Issue(ctx, id, IssueInput{GuestCount: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.StateIssued, view.Session.State)
	require.NotNil(t, view.Rsvp)
	assert.Len(t, view.Rsvp.TicketIDs, 3)
	assert.Equal(t, "lounge", *view.Rsvp.SelectedVenueID)
	assert.Equal(t, domain.TierEmerald, *view.Rsvp.SelectedTierID)

	seen := make(map[string]bool)
	for _, ticket := range view.Rsvp.TicketIDs {
		assert.False(t, seen[ticket], ticket)
		seen[ticket] = true
	}

	rsvps, err := f.rsvps.List(ctx)
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	assert.Len(t, f.notes.issued, 1)

	again := f.verified(t, carlosPhone)
	view, err = f.admission.Session(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIssued, view.Session.State)
	assert.Len(t, view.Rsvp.TicketIDs, 3)

	_, err = f.admission.Claim(ctx, again, token)
	assert.ErrorIs(t, err, ErrTicketsAlreadyIssued)
	_, err = f.admission.SelectTier(ctx, again, domain.TierStandard)
	assert.ErrorIs(t, err, ErrTicketsAlreadyIssued)

	tiers, err := f.config.Tiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, stockOf(tiers, domain.TierEmerald))
}

func TestAdmission_PlatinumLastUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	stocks := defaultStocks()
	stocks[domain.TierPlatinum] = 1
	f.setStocks(t, stocks)

	carlos, carlosToken := f.toClaiming(t, carlosPhone, domain.TierPlatinum)
	maria, mariaToken := f.toClaiming(t, mariaPhone, domain.TierPlatinum)

	type outcome struct {
		view AdmissionView
		err  error
	}
	results := make([]outcome, 2)

	var wg sync.WaitGroup
	for i, claim := range [][2]string{{carlos, carlosToken}, {maria, mariaToken}} {
		wg.Add(1)
		go func(i int, id, token string) {
			defer wg.Done()
			view, err := f.admission.Claim(ctx, id, token)
			results[i] = outcome{view: view, err: err}
		}(i, claim[0], claim[1])
	}
	wg.Wait()

	var won, lost int
	for _, r := range results {
		switch {
		case r.err == nil:
			won++
			assert.Equal(t, domain.StateIssuing, r.view.Session.State)
		case errors.Is(r.err, ErrStockExhausted):
			lost++
			assert.Equal(t, domain.StateTierSelecting, r.view.Session.State)
			assert.Empty(t, r.view.Session.TierID)
			assert.Equal(t, 0, stockOf(r.view.Tiers, domain.TierPlatinum))
		default:
			t.Fatalf("unexpected claim error: %v", r.err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	tiers, err := f.config.Tiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(tiers, domain.TierPlatinum))
}

func TestAdmission_SecondSessionReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	stocks := defaultStocks()
	stocks[domain.TierPlatinum] = 2
	f.setStocks(t, stocks)

	first, firstToken := f.toClaiming(t, carlosPhone, domain.TierPlatinum)
	second, secondToken := f.toClaiming(t, carlosPhone, domain.TierPlatinum)

	_, err := f.admission.Claim(ctx, first, firstToken)
	require.NoError(t, err)
	view, err := f.admission.Claim(ctx, second, secondToken)
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(view.Tiers, domain.TierPlatinum))

	in := IssueInput{FirstName: "Carlos", Email: "carlos@example.com"}
	_, err = f.admission.Issue(ctx, first, in)
	require.NoError(t, err)

	_, err = f.admission.Issue(ctx, second, in)
	require.ErrorIs(t, err, ErrTicketsAlreadyIssued)

	view, err = f.admission.Session(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIssued, view.Session.State)
	assert.Equal(t, 1, stockOf(view.Tiers, domain.TierPlatinum))

	rsvps, err := f.rsvps.List(ctx)
	require.NoError(t, err)
	withTickets := 0
	for _, r := range rsvps {
		if r.HasTickets() {
			withTickets++
		}
	}
	assert.Equal(t, 1, withTickets)
}

func TestAdmission_SessionReleasesClaimAfterOtherIssue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	stale, token := f.toClaiming(t, mariaPhone, domain.TierEmerald)
	_, err := f.admission.Claim(ctx, stale, token)
	require.NoError(t, err)

	f.issued(t, mariaPhone, domain.TierEmerald, IssueInput{FirstName: "María", Email: "maria@example.com"})

	tiers, err := f.config.Tiers(ctx)
	require.NoError(t, err)
	before := stockOf(tiers, domain.TierEmerald)

	view, err := f.admission.Session(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIssued, view.Session.State)
	assert.Equal(t, before+1, stockOf(view.Tiers, domain.TierEmerald))

	view, err = f.admission.Session(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, before+1, stockOf(view.Tiers, domain.TierEmerald))
}

func TestAdmission_SoldOutTierAndAbandon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	stocks := defaultStocks()
	stocks[domain.TierPlatinum] = 0
	f.setStocks(t, stocks)

	id := f.verified(t, alonsoPhone)
	_, err := f.admission.SelectTier(ctx, id, domain.TierPlatinum)
	assert.ErrorIs(t, err, ErrTierSoldOut)
	_, err = f.admission.SelectTier(ctx, id, "gold")
	assert.ErrorIs(t, err, ErrTierNotFound)

	view, err := f.admission.SelectTier(ctx, id, domain.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, 6, view.Session.Challenge.Targets)

	view, err = f.admission.AbandonGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateTierSelecting, view.Session.State)
	assert.Nil(t, view.Session.Challenge)
	assert.Equal(t, 25, stockOf(view.Tiers, domain.TierStandard))

	_, err = f.admission.AbandonGame(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdmission_IssueWithoutVote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.closeVoting(t)

	id, token := f.toClaiming(t, alonsoPhone, domain.TierStandard)
	_, err := f.admission.Issue(ctx, id, IssueInput{})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.admission.Claim(ctx, id, token)
	require.NoError(t, err)

	_, err = f.admission.Issue(ctx, id, IssueInput{GuestCount: 1})
	require.ErrorIs(t, err, ErrIdentityRequired)

	view, err := f.admission.Issue(ctx, id, IssueInput{
		GuestCount: 0,
		FirstName:  "Alonso",
		LastName:   "Ñáñez",
		Email:      "alonso@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, view.Rsvp)
	assert.Nil(t, view.Rsvp.SelectedVenueID)
	require.Len(t, view.Rsvp.TicketIDs, 1)
	assert.Contains(t, view.Rsvp.TicketIDs[0], "LUM-ALON-")
}

func TestAdmission_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.admission.Verify(context.Background(), "missing", carlosPhone)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

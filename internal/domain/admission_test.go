package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var carlos = Guest{ID: "11111111-1111-1111-1111-111111111111", Name: "Carlos", Phone: "987654321"}

func newSession(t *testing.T) *AdmissionSession {
	t.Helper()
	return NewAdmissionSession("sess-1", time.Now(), 2*time.Hour)
}

func ptr[T any](v T) *T {
	return &v
}

func TestAdmissionSession_Verified(t *testing.T) {
	withTickets := &Rsvp{GuestID: carlos.ID, TicketIDs: []string{"LUM-CARL-X-1"}}
	voteOnly := &Rsvp{GuestID: carlos.ID, SelectedVenueID: ptr("lounge")}

	tests := []struct {
		name     string
		existing *Rsvp
		closed   bool
		want     AdmissionState
	}{
		{"voting open without submission", nil, false, StateVoting},
		{"voting open with vote", voteOnly, false, StateAwaitingClose},
		{"voting closed without submission", nil, true, StateTierSelecting},
		{"voting closed with vote", voteOnly, true, StateTierSelecting},
		{"tickets already issued", withTickets, false, StateIssued},
		{"tickets already issued after close", withTickets, true, StateIssued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			require.NoError(t, s.Verified(carlos, tt.existing, tt.closed))
			assert.Equal(t, tt.want, s.State)
			assert.Equal(t, carlos.ID, s.GuestID)
		})
	}
}

func TestAdmissionSession_VerifiedTwice(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, false))
	assert.ErrorIs(t, s.Verified(carlos, nil, false), ErrInvalidTransition)
}

func TestAdmissionSession_VoteThenClose(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, false))
	require.NoError(t, s.Voted())
	assert.Equal(t, StateAwaitingClose, s.State)

	assert.ErrorIs(t, s.Voted(), ErrInvalidTransition)

	s.Refresh(&Rsvp{GuestID: carlos.ID, SelectedVenueID: ptr("lounge")}, true)
	assert.Equal(t, StateTierSelecting, s.State)
}

func TestAdmissionSession_ClaimFlow(t *testing.T) {
	now := time.Now()
	platinum := TicketTier{ID: TierPlatinum, Stock: 1}

	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))

	_, err := s.AuthorizeClaim("token")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.SelectTier(platinum, NewGameChallenge("ch-1", TierPlatinum, now)))
	assert.Equal(t, StateMiniGame, s.State)
	require.NotNil(t, s.Challenge)
	assert.Equal(t, 15, s.Challenge.Targets)

	assert.ErrorIs(t, s.CompleteGame("other", 15, now, "token"), ErrChallengeMismatch)
	assert.ErrorIs(t, s.CompleteGame("ch-1", 14, now, "token"), ErrGameFailed)
	assert.Equal(t, StateMiniGame, s.State)

	require.NoError(t, s.CompleteGame("ch-1", 15, now.Add(5*time.Second), "token"))
	assert.Equal(t, StateClaiming, s.State)

	_, err = s.AuthorizeClaim("forged")
	assert.ErrorIs(t, err, ErrInvalidClaimToken)

	tierID, err := s.AuthorizeClaim("token")
	require.NoError(t, err)
	assert.Equal(t, TierPlatinum, tierID)

	require.NoError(t, s.Claimed())
	assert.Equal(t, StateIssuing, s.State)
	assert.Empty(t, s.ClaimToken)

	_, err = s.AuthorizeClaim("token")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Issued())
	assert.Equal(t, StateIssued, s.State)

	s.Refresh(nil, false)
	assert.Equal(t, StateIssued, s.State)
}

func TestAdmissionSession_SoldOutTier(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))

	err := s.SelectTier(TicketTier{ID: TierEmerald, Stock: 0}, NewGameChallenge("ch", TierEmerald, time.Now()))
	assert.ErrorIs(t, err, ErrTierSoldOut)
	assert.Equal(t, StateTierSelecting, s.State)
}

func TestAdmissionSession_AbandonGame(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))
	require.NoError(t, s.SelectTier(TicketTier{ID: TierStandard, Stock: 3}, NewGameChallenge("ch", TierStandard, time.Now())))

	require.NoError(t, s.AbandonGame())
	assert.Equal(t, StateTierSelecting, s.State)
	assert.Empty(t, s.TierID)
	assert.Nil(t, s.Challenge)

	assert.ErrorIs(t, s.AbandonGame(), ErrInvalidTransition)
}

func TestAdmissionSession_ClaimFailed(t *testing.T) {
	now := time.Now()
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))
	require.NoError(t, s.SelectTier(TicketTier{ID: TierPlatinum, Stock: 1}, NewGameChallenge("ch", TierPlatinum, now)))
	require.NoError(t, s.CompleteGame("ch", 20, now, "token"))

	s.ClaimFailed()
	assert.Equal(t, StateTierSelecting, s.State)
	assert.Empty(t, s.TierID)
	assert.Empty(t, s.ClaimToken)
}

func TestAdmissionSession_LateGame(t *testing.T) {
	now := time.Now()
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))
	require.NoError(t, s.SelectTier(TicketTier{ID: TierStandard, Stock: 1}, NewGameChallenge("ch", TierStandard, now)))

	assert.ErrorIs(t, s.CompleteGame("ch", 6, now.Add(time.Minute), "token"), ErrGameFailed)
}

func TestAdmissionSession_RefreshPicksUpIssuedElsewhere(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Verified(carlos, nil, true))
	require.NoError(t, s.SelectTier(TicketTier{ID: TierStandard, Stock: 1}, NewGameChallenge("ch", TierStandard, time.Now())))

	s.Refresh(&Rsvp{GuestID: carlos.ID}, true)
	assert.Equal(t, StateMiniGame, s.State)

	s.Refresh(&Rsvp{GuestID: carlos.ID, TicketIDs: []string{"LUM-CARL-A-1"}}, true)
	assert.Equal(t, StateIssued, s.State)
}

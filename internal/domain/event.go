package domain

import "time"

type EventConfig struct {
	DateDisplay         string    `json:"date_display"`
	FullDate            string    `json:"full_date"`
	Time                string    `json:"time"`
	LocationPlaceholder string    `json:"location_placeholder"`
	GuestPasscode       string    `json:"guest_passcode,omitempty"`
	VotingDeadline      time.Time `json:"voting_deadline"`
	WinningVenueID      *string   `json:"winning_venue_id"`
	MaxCapacity         int       `json:"max_capacity"`
}

// VotingClosed is true once the deadline has passed or an admin forced a winner.
func (c EventConfig) VotingClosed(now time.Time) bool {
	if c.WinningVenueID != nil && *c.WinningVenueID != "" {
		return true
	}

	return !now.Before(c.VotingDeadline)
}

func DefaultEventConfig(now time.Time) EventConfig {
	return EventConfig{
		DateDisplay:         "28 . 02",
		FullDate:            "Sábado, 28 de Febrero 2026",
		Time:                "09:00 PM",
		LocationPlaceholder: "Ubicación por Confirmar",
		GuestPasscode:       "2026",
		VotingDeadline:      now.Add(7 * 24 * time.Hour).UTC().Truncate(time.Second),
		MaxCapacity:         50,
	}
}

type VenueTally struct {
	Venue   Venue   `json:"venue"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}

// TallyVotes counts one vote per RSVP with a selected venue. The result keeps
// the order of venues, which callers pass sorted by creation order.
func TallyVotes(venues []Venue, rsvps []Rsvp) []VenueTally {
	counts := make(map[string]int, len(venues))
	for _, r := range rsvps {
		if r.SelectedVenueID != nil {
			counts[*r.SelectedVenueID]++
		}
	}

	tallies := make([]VenueTally, 0, len(venues))
	for _, v := range venues {
		t := VenueTally{Venue: v, Votes: counts[v.ID]}
		if len(rsvps) > 0 {
			t.Percent = float64(t.Votes) / float64(len(rsvps)) * 100
		}
		tallies = append(tallies, t)
	}

	return tallies
}

// LeadingVenue returns the venue with the most votes. Ties go to the venue
// created first. ok is false when there are no votes at all.
func LeadingVenue(venues []Venue, rsvps []Rsvp) (Venue, bool) {
	var (
		best  VenueTally
		found bool
	)
	for _, t := range TallyVotes(venues, rsvps) {
		if t.Votes > best.Votes {
			best = t
			found = true
		}
	}

	return best.Venue, found
}

// WinningVenue resolves the confirmed venue: the forced winner if set,
// otherwise the vote leader, otherwise the first venue.
func WinningVenue(conf EventConfig, venues []Venue, rsvps []Rsvp) (Venue, bool) {
	if conf.WinningVenueID != nil {
		if v, ok := FindVenue(venues, *conf.WinningVenueID); ok {
			return v, true
		}
	}
	if v, ok := LeadingVenue(venues, rsvps); ok {
		return v, true
	}
	if len(venues) > 0 {
		return venues[0], true
	}

	return Venue{}, false
}

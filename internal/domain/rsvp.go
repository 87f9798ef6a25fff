package domain

import (
	"strings"
	"time"
)

const MaxCompanions = 3

type Rsvp struct {
	ID              uint      `json:"id"`
	GuestID         string    `json:"guest_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	SelectedVenueID *string   `json:"selected_venue_id"`
	SelectedTierID  *string   `json:"selected_tier_id,omitempty"`
	GuestCount      int       `json:"guest_count"`
	TicketIDs       []string  `json:"ticket_ids,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasTickets is false for an RSVP that only carries a vote.
func (r Rsvp) HasTickets() bool {
	return len(r.TicketIDs) > 0
}

// Pax counts the registrant plus companions.
func (r Rsvp) Pax() int {
	return 1 + r.GuestCount
}

func (r Rsvp) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

type TicketScan struct {
	ID         uint      `json:"id"`
	TicketID   string    `json:"ticket_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	TierName   string    `json:"tier_name"`
	ScannedAt  time.Time `json:"scanned_at"`
}

type ScanStatus string

const (
	ScanAdmitted    ScanStatus = "admitted"
	ScanAlreadyUsed ScanStatus = "already_used"
	ScanNotFound    ScanStatus = "not_found"
)

type ScanResult struct {
	Status    ScanStatus `json:"status"`
	TicketID  string     `json:"ticket_id"`
	Rsvp      *Rsvp      `json:"rsvp,omitempty"`
	TierName  string     `json:"tier_name,omitempty"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
}

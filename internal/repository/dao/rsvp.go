package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRsvpExists           = errors.New("rsvp already exists for guest")
	ErrRsvpNotFound         = errors.New("rsvp not found")
	ErrTicketsAlreadyIssued = errors.New("tickets already issued")
	ErrTicketExists         = errors.New("ticket id already exists")
	ErrTicketNotFound       = errors.New("ticket not found")
)

type Rsvp struct {
	ID              uint    `gorm:"primaryKey"`
	GuestID         *string `gorm:"uniqueIndex;size:36"`
	Guest           *Guest  `gorm:"foreignKey:GuestID;constraint:OnDelete:SET NULL"`
	FirstName       string  `gorm:"not null"`
	LastName        string
	Email           string
	SelectedVenueID *string `gorm:"size:64;index"`
	SelectedTierID  *string `gorm:"size:32"`
	GuestCount      int     `gorm:"not null;default:0"`
	Tickets         []Ticket `gorm:"foreignKey:RsvpID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Ticket struct {
	ID        string `gorm:"primaryKey;size:64"`
	RsvpID    uint   `gorm:"not null;index"`
	Position  int    `gorm:"not null"`
	CreatedAt time.Time
}

type RsvpDAO struct {
	db *gorm.DB
}

func NewRsvpDAO(db *gorm.DB) *RsvpDAO {
	return &RsvpDAO{
		db: db,
	}
}

func orderedTickets(db *gorm.DB) *gorm.DB {
	return db.Order("tickets.position")
}

// InsertVote stores a vote-only submission. The unique guest_id index keeps a
// guest at one submission.
func (d *RsvpDAO) InsertVote(ctx context.Context, rsvp Rsvp) (Rsvp, error) {
	rsvp.Tickets = nil

	result := d.db.WithContext(ctx).Create(&rsvp)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return Rsvp{}, ErrRsvpExists
		}

		return Rsvp{}, result.Error
	}

	return rsvp, nil
}

func (d *RsvpDAO) FindByGuestID(ctx context.Context, guestID string) (Rsvp, error) {
	return findRsvp(d.db.WithContext(ctx), "guest_id = ?", guestID)
}

func findRsvp(tx *gorm.DB, query string, args ...any) (Rsvp, error) {
	var rsvp Rsvp

	result := tx.Preload("Tickets", orderedTickets).Where(query, args...).First(&rsvp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Rsvp{}, ErrRsvpNotFound
		}

		return Rsvp{}, result.Error
	}

	return rsvp, nil
}

func (d *RsvpDAO) FindAll(ctx context.Context) ([]Rsvp, error) {
	var rsvps []Rsvp

	result := d.db.WithContext(ctx).Preload("Tickets", orderedTickets).Order("created_at").Order("id").Find(&rsvps)
	if result.Error != nil {
		return nil, result.Error
	}

	return rsvps, nil
}

// Issue attaches the claimed tier and tickets to the guest's submission,
// creating it when the guest never voted. A submission that already holds
// tickets is left untouched.
func (d *RsvpDAO) Issue(ctx context.Context, rsvp Rsvp, ticketIDs []string) (Rsvp, error) {
	if rsvp.GuestID == nil || len(ticketIDs) == 0 {
		return Rsvp{}, errors.New("issue requires a guest and at least one ticket")
	}

	var issued Rsvp

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findRsvp(tx, "guest_id = ?", *rsvp.GuestID)
		switch {
		case errors.Is(err, ErrRsvpNotFound):
			rsvp.Tickets = nil
			if err := tx.Create(&rsvp).Error; err != nil {
				return err
			}
			existing = rsvp
		case err != nil:
			return err
		case len(existing.Tickets) > 0:
			return ErrTicketsAlreadyIssued
		default:
			updates := map[string]any{
				"selected_tier_id": rsvp.SelectedTierID,
				"guest_count":      rsvp.GuestCount,
			}
			if existing.Email == "" && rsvp.Email != "" {
				updates["email"] = rsvp.Email
			}
			if existing.LastName == "" && rsvp.LastName != "" {
				updates["last_name"] = rsvp.LastName
			}
			if err := tx.Model(&Rsvp{ID: existing.ID}).Updates(updates).Error; err != nil {
				return err
			}
		}

		tickets := make([]Ticket, 0, len(ticketIDs))
		for i, id := range ticketIDs {
			tickets = append(tickets, Ticket{ID: id, RsvpID: existing.ID, Position: i})
		}
		if err := tx.Create(&tickets).Error; err != nil {
			if isDuplicate(err) {
				return ErrTicketExists
			}

			return err
		}

		issued, err = findRsvp(tx, "id = ?", existing.ID)

		return err
	})
	if err != nil {
		return Rsvp{}, err
	}

	return issued, nil
}

// FindTicket returns the ticket and the submission it belongs to.
func (d *RsvpDAO) FindTicket(ctx context.Context, ticketID string) (Ticket, Rsvp, error) {
	var ticket Ticket

	db := d.db.WithContext(ctx)
	result := db.First(&ticket, "id = ?", ticketID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, Rsvp{}, ErrTicketNotFound
		}

		return Ticket{}, Rsvp{}, result.Error
	}

	rsvp, err := findRsvp(db, "id = ?", ticket.RsvpID)
	if err != nil {
		return Ticket{}, Rsvp{}, err
	}

	return ticket, rsvp, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
)

var (
	ErrRsvpExists           = dao.ErrRsvpExists
	ErrRsvpNotFound         = dao.ErrRsvpNotFound
	ErrTicketsAlreadyIssued = dao.ErrTicketsAlreadyIssued
	ErrTicketExists         = dao.ErrTicketExists
	ErrTicketNotFound       = dao.ErrTicketNotFound
)

type RsvpDAO interface {
	InsertVote(ctx context.Context, rsvp dao.Rsvp) (dao.Rsvp, error)
	FindByGuestID(ctx context.Context, guestID string) (dao.Rsvp, error)
	FindAll(ctx context.Context) ([]dao.Rsvp, error)
	Issue(ctx context.Context, rsvp dao.Rsvp, ticketIDs []string) (dao.Rsvp, error)
	FindTicket(ctx context.Context, ticketID string) (dao.Ticket, dao.Rsvp, error)
}

type RsvpRepository struct {
	dao RsvpDAO
}

func NewRsvpRepository(dao RsvpDAO) *RsvpRepository {
	return &RsvpRepository{
		dao: dao,
	}
}

func (r *RsvpRepository) CreateVote(ctx context.Context, rsvp domain.Rsvp) (domain.Rsvp, error) {
	created, err := r.dao.InsertVote(ctx, r.domainToDao(rsvp))
	if err != nil {
		return domain.Rsvp{}, fmt.Errorf("r.dao.InsertVote -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RsvpRepository) FindByGuestID(ctx context.Context, guestID string) (domain.Rsvp, error) {
	found, err := r.dao.FindByGuestID(ctx, guestID)
	if err != nil {
		return domain.Rsvp{}, fmt.Errorf("r.dao.FindByGuestID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RsvpRepository) List(ctx context.Context) ([]domain.Rsvp, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	rsvps := make([]domain.Rsvp, 0, len(found))
	for _, rsvp := range found {
		rsvps = append(rsvps, r.daoToDomain(rsvp))
	}

	return rsvps, nil
}

// Issue stores rsvp.TicketIDs together with the tier on the guest's single submission.
func (r *RsvpRepository) Issue(ctx context.Context, rsvp domain.Rsvp) (domain.Rsvp, error) {
	issued, err := r.dao.Issue(ctx, r.domainToDao(rsvp), rsvp.TicketIDs)
	if err != nil {
		return domain.Rsvp{}, fmt.Errorf("r.dao.Issue -> %w", err)
	}

	return r.daoToDomain(issued), nil
}

// FindByTicketID returns the submission owning ticketID.
func (r *RsvpRepository) FindByTicketID(ctx context.Context, ticketID string) (domain.Rsvp, error) {
	_, found, err := r.dao.FindTicket(ctx, ticketID)
	if err != nil {
		return domain.Rsvp{}, fmt.Errorf("r.dao.FindTicket -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RsvpRepository) domainToDao(rsvp domain.Rsvp) dao.Rsvp {
	model := dao.Rsvp{
		ID:              rsvp.ID,
		FirstName:       rsvp.FirstName,
		LastName:        rsvp.LastName,
		Email:           rsvp.Email,
		SelectedVenueID: rsvp.SelectedVenueID,
		SelectedTierID:  rsvp.SelectedTierID,
		GuestCount:      rsvp.GuestCount,
	}
	if rsvp.GuestID != "" {
		guestID := rsvp.GuestID
		model.GuestID = &guestID
	}

	return model
}

func (r *RsvpRepository) daoToDomain(rsvp dao.Rsvp) domain.Rsvp {
	result := domain.Rsvp{
		ID:              rsvp.ID,
		FirstName:       rsvp.FirstName,
		LastName:        rsvp.LastName,
		Email:           rsvp.Email,
		SelectedVenueID: rsvp.SelectedVenueID,
		SelectedTierID:  rsvp.SelectedTierID,
		GuestCount:      rsvp.GuestCount,
		CreatedAt:       rsvp.CreatedAt,
		UpdatedAt:       rsvp.UpdatedAt,
	}
	if rsvp.GuestID != nil {
		result.GuestID = *rsvp.GuestID
	}
	for _, t := range rsvp.Tickets {
		result.TicketIDs = append(result.TicketIDs, t.ID)
	}

	return result
}

package request

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/lumina-events/invitation-api/internal/domain"
)

var phoneExp = regexp.MustCompile(`^[\d\s\-+()]{9,20}$`)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

type CreateGuestRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (req *CreateGuestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneExp)),
	)
}

type VenueRequest struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Vibe        string   `json:"vibe"`
	MinSpend    string   `json:"min_spend"`
	ClosingTime string   `json:"closing_time"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	Color       string   `json:"color"`
	VideoURL    string   `json:"video_url,omitempty"`
	MapsURL     string   `json:"maps_url,omitempty"`
}

func (req *VenueRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Length(0, 36), is.Alphanumeric.Error("must contain letters and digits only")),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Perks, validation.Length(0, 10)),
		validation.Field(&req.VideoURL, is.URL),
		validation.Field(&req.MapsURL, is.URL),
	)
}

func (req *VenueRequest) Venue() domain.Venue {
	return domain.Venue{
		ID:          req.ID,
		Name:        req.Name,
		Vibe:        req.Vibe,
		MinSpend:    req.MinSpend,
		ClosingTime: req.ClosingTime,
		Description: req.Description,
		Perks:       req.Perks,
		Color:       req.Color,
		VideoURL:    req.VideoURL,
		MapsURL:     req.MapsURL,
	}
}

// ConfigRequest replaces the whole event configuration.
type ConfigRequest struct {
	DateDisplay         string    `json:"date_display"`
	FullDate            string    `json:"full_date"`
	Time                string    `json:"time"`
	LocationPlaceholder string    `json:"location_placeholder"`
	GuestPasscode       string    `json:"guest_passcode"`
	VotingDeadline      time.Time `json:"voting_deadline"`
	WinningVenueID      *string   `json:"winning_venue_id"`
	MaxCapacity         int       `json:"max_capacity"`
}

func (req *ConfigRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DateDisplay, validation.Required),
		validation.Field(&req.FullDate, validation.Required),
		validation.Field(&req.Time, validation.Required),
		validation.Field(&req.VotingDeadline, validation.Required),
		validation.Field(&req.MaxCapacity, validation.Required, validation.Min(1)),
	)
}

func (req *ConfigRequest) EventConfig() domain.EventConfig {
	return domain.EventConfig{
		DateDisplay:         req.DateDisplay,
		FullDate:            req.FullDate,
		Time:                req.Time,
		LocationPlaceholder: req.LocationPlaceholder,
		GuestPasscode:       req.GuestPasscode,
		VotingDeadline:      req.VotingDeadline,
		WinningVenueID:      req.WinningVenueID,
		MaxCapacity:         req.MaxCapacity,
	}
}

type ScanRequest struct {
	TicketID string `json:"ticket_id"`
}

func (req *ScanRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required),
	)
}

type ConfirmResetRequest struct {
	Code string `json:"code"`
}

func (req *ConfirmResetRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(8, 8)),
	)
}

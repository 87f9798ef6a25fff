package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/lumina-events/invitation-api/internal/domain"
)

// VerifyRequest only bounds the input size. Presence and shape are checked
// by the service so a locked session answers rate_limited for any input.
type VerifyRequest struct {
	Phone string `json:"phone"`
}

func (req *VerifyRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Phone, validation.Length(0, 32)),
	)
}

type VoteRequest struct {
	VenueID   string `json:"venue_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (req *VoteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 60)),
		validation.Field(&req.LastName, validation.Length(0, 60)),
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type SelectTierRequest struct {
	TierID string `json:"tier_id"`
}

func (req *SelectTierRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TierID, validation.Required),
	)
}

type CompleteGameRequest struct {
	ChallengeID string `json:"challenge_id"`
	Hits        int    `json:"hits"`
}

func (req *CompleteGameRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ChallengeID, validation.Required),
		validation.Field(&req.Hits, validation.Min(0)),
	)
}

type ClaimRequest struct {
	ClaimToken string `json:"claim_token"`
}

func (req *ClaimRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ClaimToken, validation.Required),
	)
}

// IssueRequest identity fields are only required from guests who never voted.
type IssueRequest struct {
	GuestCount int    `json:"guest_count"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
}

func (req *IssueRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GuestCount, validation.Min(0), validation.Max(domain.MaxCompanions)),
		validation.Field(&req.FirstName, validation.Length(0, 60)),
		validation.Field(&req.LastName, validation.Length(0, 60)),
		validation.Field(&req.Email, is.Email),
	)
}

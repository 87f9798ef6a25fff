package domain

import "time"

const (
	TierPlatinum = "platinum"
	TierEmerald  = "emerald"
	TierStandard = "standard"

	// PlatinumStock is fixed regardless of the event capacity.
	PlatinumStock = 5

	// ClaimExhausted is the sentinel returned by the claim procedure when the
	// tier has no stock left.
	ClaimExhausted = -1
)

type TicketTier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stock       int       `json:"stock"`
	Color       string    `json:"color"`
	Perks       []string  `json:"perks"`
	Position    int       `json:"position"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t TicketTier) Available() bool {
	return t.Stock > 0
}

// StockPlan splits maxCapacity across the three tiers: platinum keeps its
// fixed allotment and the rest is halved between emerald and standard, with
// standard taking the odd seat.
func StockPlan(maxCapacity int) map[string]int {
	remaining := maxCapacity - PlatinumStock
	if remaining < 0 {
		remaining = 0
	}
	emerald := remaining / 2

	return map[string]int{
		TierPlatinum: PlatinumStock,
		TierEmerald:  emerald,
		TierStandard: remaining - emerald,
	}
}

func DefaultTiers() []TicketTier {
	return []TicketTier{
		{
			ID:          TierPlatinum,
			Name:        "PLATINUM VIP",
			Description: "Acceso total + Barra Libre",
			Stock:       5,
			Color:       "amber",
			Perks:       []string{"Barra Libre", "Zona VIP", "Meet & Greet"},
			Position:    0,
		},
		{
			ID:          TierEmerald,
			Name:        "EMERALD GUEST",
			Description: "Acceso Preferencial",
			Stock:       12,
			Color:       "emerald",
			Perks:       []string{"Zona Preferencial", "Welcome Drink"},
			Position:    1,
		},
		{
			ID:          TierStandard,
			Name:        "STANDARD ECHO",
			Description: "Acceso General",
			Stock:       25,
			Color:       "gray",
			Perks:       []string{"Acceso General"},
			Position:    2,
		},
	}
}

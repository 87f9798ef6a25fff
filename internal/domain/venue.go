package domain

import (
	"sort"
	"time"
)

type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Vibe        string    `json:"vibe"`
	MinSpend    string    `json:"min_spend"`
	ClosingTime string    `json:"closing_time"`
	Description string    `json:"description"`
	Perks       []string  `json:"perks"`
	Color       string    `json:"color"`
	VideoURL    string    `json:"video_url,omitempty"`
	MapsURL     string    `json:"maps_url,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortVenues orders venues by creation order: position, then creation time, then ID.
func SortVenues(venues []Venue) {
	sort.SliceStable(venues, func(i, j int) bool {
		a, b := venues[i], venues[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func FindVenue(venues []Venue, id string) (Venue, bool) {
	for _, v := range venues {
		if v.ID == id {
			return v, true
		}
	}

	return Venue{}, false
}

func DefaultVenues() []Venue {
	return []Venue{
		{
			ID:          "lounge",
			Name:        "Skyline Rooftop",
			Vibe:        "Relajado & Elegante",
			MinSpend:    "S/ 80",
			ClosingTime: "02:00 AM",
			Description: "Cócteles de autor, vista panorámica a la ciudad y ambiente para conversar.",
			Perks:       []string{"Vista Increíble", "Música Chill"},
			Color:       "from-indigo-500 to-blue-500",
			Position:    0,
		},
		{
			ID:          "club",
			Name:        "Neon Pulse Club",
			Vibe:        "Energía al Máximo",
			MinSpend:    "S/ 120",
			ClosingTime: "06:00 AM",
			Description: "Para bailar hasta las últimas consecuencias. Luces potentes y el mejor sonido.",
			Perks:       []string{"Pista Privada", "DJ de Moda"},
			Color:       "from-fuchsia-600 to-purple-600",
			Position:    1,
		},
		{
			ID:          "pub",
			Name:        "The Urban Pub",
			Vibe:        "Casual & Entre Patas",
			MinSpend:    "S/ 40",
			ClosingTime: "03:00 AM",
			Description: "Cervezas artesanales bien heladas, piqueos peruanos y buena música para compartir.",
			Perks:       []string{"Precios Amigos", "Ambiente Familiar"},
			Color:       "from-orange-500 to-amber-500",
			Position:    2,
		},
	}
}

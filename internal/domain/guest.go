package domain

import (
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^9\d{8}$`)

type Guest struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsValidPhone reports whether phone is a 9 digit mobile number starting with 9.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone drops every non digit character, so "987 654 321" becomes "987654321".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// FirstName returns the first word of the guest's display name.
func (g Guest) FirstName() string {
	fields := strings.Fields(g.Name)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// DefaultGuests is the directory inserted when the guests table is empty.
func DefaultGuests() []Guest {
	return []Guest{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "Carlos", Phone: "987654321"},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "María", Phone: "912345678"},
		{ID: "33333333-3333-3333-3333-333333333333", Name: "Alonso", Phone: "956781234"},
	}
}

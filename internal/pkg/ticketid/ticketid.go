// Package ticketid generates the printable ticket identifiers encoded in QR codes.
package ticketid

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Prefix = "LUM"

	// randomChars of base32 carry 50 bits of entropy.
	randomChars = 10
	prefixChars = 4
	fallback    = "GUES"

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
)

var (
	ErrInvalidCount = errors.New("ticket count must be positive")

	encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)
)

// Generate returns n identifiers shaped LUM-<NAME>-<RANDOM>-<i>. Each ticket
// gets its own random part and the index suffix keeps a batch distinct.
func Generate(firstName string, n int) ([]string, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}

	name := namePart(firstName)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		random, err := randomPart()
		if err != nil {
			return nil, err
		}
		ids = append(ids, fmt.Sprintf("%s-%s-%s-%d", Prefix, name, random, i))
	}

	return ids, nil
}

// Valid reports whether id has the shape produced by Generate.
func Valid(id string) bool {
	parts := strings.Split(id, "-")
	if len(parts) != 4 || parts[0] != Prefix {
		return false
	}
	if parts[1] == "" || len(parts[1]) > prefixChars || len(parts[2]) != randomChars {
		return false
	}
	for _, r := range parts[2] {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	for _, r := range parts[3] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return parts[3] != ""
}

func namePart(firstName string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), firstName)
	if err != nil {
		folded = firstName
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(folded) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == prefixChars {
			break
		}
	}
	if b.Len() == 0 {
		return fallback
	}

	return b.String()
}

func randomPart() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	return encoding.EncodeToString(buf)[:randomChars], nil
}

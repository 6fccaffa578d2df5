package generator

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	alphanumChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// CodeLength is the length of auto-generated shortcodes.
	CodeLength = 6

	// FallbackLength is the length of the uuid-derived fallback code.
	FallbackLength = 8
)

var shortCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9]{1,20}$`)

// GenerateShortCode returns a random alphanumeric code of CodeLength.
func GenerateShortCode() (string, error) {
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanumChars))))

		if err != nil {
			return "", err
		}

		b[i] = alphanumChars[n.Int64()]
	}

	return string(b), nil
}

// FallbackShortCode returns a code derived from a fresh UUID. Uniqueness comes
// from the UUID itself, so unlike GenerateShortCode it needs no collision
// retry against the store.
func FallbackShortCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:FallbackLength]
}

// IsValidShortCode reports whether a user-supplied shortcode is acceptable:
// 1-20 alphanumeric characters, nothing else.
func IsValidShortCode(code string) bool {
	return shortCodeRegex.MatchString(code)
}

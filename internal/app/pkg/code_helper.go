package pkg

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const CardCodePrefix = "STARIX"

// Alphabet excludes 0/O/1/I/L to keep codes unambiguous when read aloud.
const cardCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateCardCode returns a human-shareable gift card code in the form
// STARIX-XXXX-XXXX-XXXX.
func GenerateCardCode() (string, error) {
	groups := make([]string, 0, 4)
	groups = append(groups, CardCodePrefix)
	for i := 0; i < 3; i++ {
		group, err := randomGroup(4)
		if err != nil {
			return "", err
		}
		groups = append(groups, group)
	}
	return strings.Join(groups, "-"), nil
}

// GenerateSecretCode returns the secondary lookup code for a card.
func GenerateSecretCode() (string, error) {
	return randomGroup(20)
}

func randomGroup(n int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(cardCodeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(cardCodeAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// NormalizeCardCode prepares user input for lookup: codes are compared
// case-insensitively with surrounding whitespace ignored.
func NormalizeCardCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

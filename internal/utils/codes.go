package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

// RandomSixDigits returns a uniformly random decimal string in [100000, 999999].
func RandomSixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// IsSixDigits reports whether s has the shape of a referral code or OTP.
func IsSixDigits(s string) bool {
	return sixDigits.MatchString(s)
}

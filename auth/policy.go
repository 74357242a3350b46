package auth

import (
	"errors"
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 8
	// minStrengthScore is the lowest acceptable zxcvbn score (0-4).
	minStrengthScore = 2
)

// ValidateNewPassword applies the password policy for registration and
// password changes: a length floor plus a zxcvbn strength estimate, which
// catches dictionary words and keyboard walks that simple character-class
// rules miss. The username is fed in as extra input so passwords derived
// from it score poorly.
func ValidateNewPassword(username, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	strength := zxcvbn.PasswordStrength(password, []string{username})
	if strength.Score < minStrengthScore {
		return errors.New("password is too easy to guess; add length or variety")
	}
	return nil
}

package quiz

import (
	"math/rand"
	"strconv"
	"strings"
)

// SecretLen is the number of distinct digits in a guess-the-number secret.
const SecretLen = 4

// NewSecret returns SecretLen distinct random digits.
func NewSecret(rng *rand.Rand) string {
	var b strings.Builder
	for _, d := range rng.Perm(10)[:SecretLen] {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

// Score compares a guess with the secret. matched counts guess digits that
// occur anywhere in the secret, placed those in the same position.
func Score(guess, secret string) (matched, placed int) {
	for i := 0; i < len(guess); i++ {
		if strings.IndexByte(secret, guess[i]) >= 0 {
			matched++
			if i < len(secret) && secret[i] == guess[i] {
				placed++
			}
		}
	}
	return matched, placed
}

// HasRepeats reports whether s contains a repeated character.
func HasRepeats(s string) bool {
	seen := make(map[rune]bool, len(s))
	for _, r := range s {
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}

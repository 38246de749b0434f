package assignment

import (
	"crypto/rand"
	"fmt"
)

// codeLength is the number of hex characters in a completion code.
const codeLength = 6

// newCompletionCode returns an unguessable one-time code from the
// cryptographic RNG. Codes are uppercase hex, e.g. "3FA91C".
func newCompletionCode() (string, error) {
	buf := make([]byte, codeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("completion code: %w", err)
	}
	return fmt.Sprintf("%X", buf), nil
}

package utils

import (
	"crypto/rand"
)

// poolCodeAlphabet excludes easily confused symbols (I, O, 0, 1) so codes
// survive being read aloud or retyped.
const poolCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PoolCodeLength is the length of generated pool codes.
const PoolCodeLength = 6

// NewPoolCode returns a random human-shareable pool code. Uniqueness is not
// guaranteed here; callers check against storage and regenerate on
// collision.
func NewPoolCode() (string, error) {
	buf := make([]byte, PoolCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = poolCodeAlphabet[int(b)%len(poolCodeAlphabet)]
	}
	return string(buf), nil
}

package utils

import (
	"math/rand"
)

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomString returns n random lowercase letters and digits.
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	sampleIDPrefix = "smp_"
)

var sampleIDPattern = regexp.MustCompile(`^smp_[a-zA-Z0-9]{24}$`)

// NewSampleID generates a new sample ID with the "smp_" prefix followed by
// 24 cryptographically random alphanumeric characters. IDs are assigned by
// the service at creation time and are never client-supplied.
func NewSampleID() string {
	return sampleIDPrefix + randomAlphanumeric(idLength)
}

// ValidateSampleID checks whether the given string is a valid sample ID
// (matches "smp_" + 24 alphanumeric characters).
func ValidateSampleID(id string) bool {
	return sampleIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}

package hashing

import (
	"crypto/sha512"
	"encoding/hex"
)

// Calculate returns the hex encoded SHA-512 of data.
func Calculate(data []byte) string {
	h := sha512.Sum512(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data still hashes to expected.
func Matches(data []byte, expected string) bool {
	return expected != "" && Calculate(data) == expected
}

package gridkit

import (
	"crypto/rand"
)

const alphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest multiple of len(alphaNumeric) that fits in a byte.
// Bytes at or above it are rejected so every character is equally likely.
const maxUnbiased = 256 - 256%len(alphaNumeric)

// randomChunk caps how many random bytes are read at once
const randomChunk = 4096

// RandomAlphaNumeric returns a string of exactly size characters drawn
// uniformly from [A-Za-z0-9]. Non-positive sizes yield an empty string.
func RandomAlphaNumeric(size int) string {
	if size <= 0 {
		return ""
	}

	out := make([]byte, 0, min(size, randomChunk))
	buf := make([]byte, min(size, randomChunk)+8)
	for len(out) < size {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand.Read never returns an error on supported platforms
			panic("gridkit: reading random bytes: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphaNumeric[int(b)%len(alphaNumeric)])
			if len(out) == size {
				break
			}
		}
	}
	return string(out)
}

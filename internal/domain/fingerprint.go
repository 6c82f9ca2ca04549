package domain

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

const fingerprintBits = 64

// Tokenize lowercases text and returns the tokens longer than two characters.
// Punctuation and other non-alphanumeric runes separate tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Fingerprint computes a 64-bit SimHash over the text's tokens: each token
// hash votes per bit position, and positions with positive tallies set their
// bit. Near-duplicate texts land within a small Hamming distance of each
// other. Returns 0 when the text has no usable tokens.
func Fingerprint(text string) uint64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var votes [fingerprintBits]int
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < fingerprintBits; i++ {
			if sum&(1<<uint(i)) != 0 {
				votes[i]++
			} else {
				votes[i]--
			}
		}
	}

	var fp uint64
	for i, v := range votes {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// HammingDistance counts the differing bits between two fingerprints.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// FingerprintSimilarity converts Hamming distance into a [0,1] similarity:
// identical fingerprints score exactly 1.0.
func FingerprintSimilarity(a, b uint64) float64 {
	return 1 - float64(HammingDistance(a, b))/fingerprintBits
}

package domain

import "testing"

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentence",
			input:    "Summarize this document",
			expected: []string{"summarize", "this", "document"},
		},
		{
			name:     "short tokens dropped",
			input:    "go to an AI hub",
			expected: []string{"hub"},
		},
		{
			name:     "punctuation separates",
			input:    "speech-to-text, fast!",
			expected: []string{"speech", "text", "fast"},
		},
		{
			name:     "digits kept",
			input:    "llama3 q4 quantized",
			expected: []string{"llama3", "quantized"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("Tokenize() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Tokenize()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("summarize quarterly financial reports")
	b := Fingerprint("summarize quarterly financial reports")
	if a != b {
		t.Errorf("same text produced different fingerprints: %x vs %x", a, b)
	}
	if a == 0 {
		t.Error("fingerprint of real text should not be 0")
	}
}

func TestFingerprintEmptyText(t *testing.T) {
	if got := Fingerprint(""); got != 0 {
		t.Errorf("Fingerprint(empty) = %x, want 0", got)
	}
	// Only tokens of length <= 2: nothing usable.
	if got := Fingerprint("a to it"); got != 0 {
		t.Errorf("Fingerprint(short tokens) = %x, want 0", got)
	}
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        uint64
		b        uint64
		expected int
	}{
		{name: "identical", a: 0xDEADBEEF, b: 0xDEADBEEF, expected: 0},
		{name: "one bit", a: 0, b: 1, expected: 1},
		{name: "one byte", a: 0xFF, b: 0x00, expected: 8},
		{name: "all bits", a: 0, b: ^uint64(0), expected: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HammingDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("HammingDistance() = %v, want %v", got, tt.expected)
			}
			// Distance is symmetric.
			if got := HammingDistance(tt.b, tt.a); got != tt.expected {
				t.Errorf("HammingDistance(reversed) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFingerprintSelfSimilarity(t *testing.T) {
	fp := Fingerprint("transcribe audio recordings locally")
	if got := FingerprintSimilarity(fp, fp); got != 1.0 {
		t.Errorf("self similarity = %v, want exactly 1.0", got)
	}
}

func TestFingerprintSimilarityScale(t *testing.T) {
	base := uint64(0xAAAAAAAAAAAAAAAA)
	tests := []struct {
		name     string
		flipped  int
		expected float64
	}{
		{name: "no bits flipped", flipped: 0, expected: 1.0},
		{name: "one bit flipped", flipped: 1, expected: 1.0 - 1.0/64},
		{name: "half flipped", flipped: 32, expected: 0.5},
		{name: "all flipped", flipped: 64, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			for i := 0; i < tt.flipped; i++ {
				other ^= 1 << uint(i)
			}
			if got := FingerprintSimilarity(base, other); !almostEqual(got, tt.expected) {
				t.Errorf("FingerprintSimilarity() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("  Summarize THIS Document  ", 0)
	if q.Normalized != "summarize this document" {
		t.Errorf("Normalized = %q", q.Normalized)
	}
	if len(q.Tokens) != 3 {
		t.Errorf("Tokens = %v, want 3 tokens", q.Tokens)
	}
	if q.Fingerprint == 0 {
		t.Error("fingerprint should be computed from text")
	}
	if q.Fingerprint != Fingerprint("summarize this document") {
		t.Error("fingerprint should come from the normalized text")
	}
}

func TestParseQueryKeepsSuppliedFingerprint(t *testing.T) {
	q := ParseQuery("summarize this document", 0xBEEF)
	if q.Fingerprint != 0xBEEF {
		t.Errorf("Fingerprint = %x, want the supplied %x", q.Fingerprint, 0xBEEF)
	}
}

func TestParseQueryEmptyInput(t *testing.T) {
	q := ParseQuery("   ", 0)
	if q.Normalized != "" || len(q.Tokens) != 0 || q.Fingerprint != 0 {
		t.Errorf("empty input parsed to %+v, want empty query", q)
	}
}

package handlers

import (
	"strings"
	"testing"
)

func TestNewSecretCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := newSecretCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != secretCodeLength {
			t.Fatalf("expected %d characters, got %q", secretCodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(secretCodeAlphabet, r) {
				t.Fatalf("character %q outside the allowed alphabet in %q", r, code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("expected distinct codes across draws, got %d unique of 50", len(seen))
	}
}

func TestSecretCodeAlphabetAvoidsAmbiguousCharacters(t *testing.T) {
	for _, r := range "01OIL" {
		if strings.ContainsRune(secretCodeAlphabet, r) {
			t.Fatalf("alphabet must not contain %q", r)
		}
	}
}

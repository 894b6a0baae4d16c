package adminreq

import (
	"regexp"
	"testing"
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func Test_generateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode() failed: %v", err)
		}
		if !codeRegex.MatchString(code) {
			t.Errorf("generateCode() = %q, want 6 uppercase alphanumeric characters", code)
		}
		seen[code] = struct{}{}
	}
	// 100 draws from a 36^6 space should not collapse to a handful of values
	if len(seen) < 90 {
		t.Errorf("generateCode() produced only %d distinct codes out of 100", len(seen))
	}
}

package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Email me at sam@example.com or +1 (555) 123-9876 and use 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestMaskIdentifierIsStable(t *testing.T) {
	a := MaskIdentifier("patient-17")
	if a != MaskIdentifier("patient-17") {
		t.Fatalf("MaskIdentifier() not stable")
	}
	if strings.Contains(a, "patient") {
		t.Fatalf("MaskIdentifier() = %q leaks input", a)
	}
	if MaskIdentifier("") != "" {
		t.Fatalf("MaskIdentifier(\"\") should be empty")
	}
}

func TestSanitizeErrorHidesKeys(t *testing.T) {
	err := errors.New("stm add: redis rpush stm:patient-17:dr-4:c1: i/o timeout")
	out := SanitizeError(err)
	if strings.Contains(out, "patient-17") || strings.Contains(out, "dr-4") {
		t.Fatalf("SanitizeError() = %q leaks identifiers", out)
	}
	if !strings.Contains(out, "i/o timeout") {
		t.Fatalf("SanitizeError() = %q dropped the cause", out)
	}
	if SanitizeError(nil) != "" {
		t.Fatalf("SanitizeError(nil) should be empty")
	}
}

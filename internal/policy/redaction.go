package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	// Memory keys embed patient identifiers: stm:<patient>:... and ltm:<patient>.
	memoryKeyPattern = regexp.MustCompile(`\b(stm|ltm):[^\s"']+`)
)

// RedactPII masks common high-risk PII patterns.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	// Run card redaction before phone to avoid card numbers being classified as phone.
	next = cardPattern.ReplaceAllString(out, "[REDACTED_CARD]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}

// MaskIdentifier returns a stable, non-reversible tag for a patient or
// counterpart id, suitable for logs.
func MaskIdentifier(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return "id_" + hex.EncodeToString(sum[:6])
}

// RedactMemoryKeys replaces stm:/ltm: keys with their masked form.
func RedactMemoryKeys(input string) string {
	return memoryKeyPattern.ReplaceAllStringFunc(input, func(key string) string {
		return key[:3] + ":" + MaskIdentifier(key[4:])
	})
}

// SanitizeError renders err for logs and client responses without patient
// identifiers or PII.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	out, _ := RedactPII(RedactMemoryKeys(err.Error()))
	return out
}

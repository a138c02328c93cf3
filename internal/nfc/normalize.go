package nfc

import "golang.org/x/text/unicode/norm"

// Normalize returns the NFC (composed) form of name.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// IsCandidate reports whether name changes under NFC normalization.
func IsCandidate(name string) bool {
	// Fast path for the common case; the slow path keeps the result
	// identical to comparing Normalize(name) with name.
	if norm.NFC.IsNormalString(name) {
		return false
	}
	return Normalize(name) != name
}

package display

import (
	"os"

	"golang.org/x/term"

	"nfc-go/internal/config"
)

const ellipsis = "..."

// AbbreviatePath shortens s to at most maxLength characters by replacing
// its middle with "...", keeping the same number of characters from each
// end. Strings that already fit are returned unchanged. Lengths count
// runes, so multi-byte names are never cut inside a character.
func AbbreviatePath(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= len(ellipsis) {
		if maxLength < 0 {
			maxLength = 0
		}
		return string(runes[:maxLength])
	}
	half := (maxLength - len(ellipsis)) / 2
	return string(runes[:half]) + ellipsis + string(runes[len(runes)-half:])
}

// StatusWidth returns the width status lines are abbreviated to: the
// configured value when positive, otherwise the width of f when it is a
// terminal, otherwise config.DefaultMaxPathLength.
func StatusWidth(configured int, f *os.File) int {
	if configured > 0 {
		return configured
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return config.DefaultMaxPathLength
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

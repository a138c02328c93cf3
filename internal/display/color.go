package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	targetColor  = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

// ConfigureColor applies a display.color setting ("auto", "always" or
// "never") for output written to f. An empty mode means "auto".
func ConfigureColor(mode string, f *os.File) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "", "auto":
		color.NoColor = f == nil ||
			!term.IsTerminal(int(f.Fd())) ||
			os.Getenv("NO_COLOR") != "" ||
			strings.ToLower(os.Getenv("TERM")) == "dumb"
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	return nil
}

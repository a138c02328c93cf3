package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"nfc-go/internal/nfc"
)

// IgnoreFileName is the per-root file listing extra ignore patterns.
const IgnoreFileName = ".nfcignore"

// defaultIgnorePatterns are always applied regardless of config or .nfcignore.
var defaultIgnorePatterns = []string{IgnoreFileName}

type ignorePattern struct {
	pattern   string
	matchPath bool // against the relative path rather than the basename
	negate    bool
}

// IgnoreMatcher decides which entries the scanner skips.
//
// A pattern without '/' is matched against the entry's basename, one with
// '/' against the path relative to the scan root, where '**' spans
// directories. A leading '!' re-includes what an earlier pattern excluded;
// the last matching pattern wins. Patterns and paths are compared in NFC, so
// a pattern matches a name whatever its normalization form.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines, lines starting with '#' and invalid patterns are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		negate := strings.HasPrefix(raw, "!")
		raw = strings.TrimPrefix(strings.TrimPrefix(raw, "!"), "/")
		if raw == "" || !doublestar.ValidatePattern(raw) {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:   nfc.Normalize(raw),
			matchPath: strings.Contains(raw, "/"),
			negate:    negate,
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the given relative path should be ignored.
// relativePath must be slash separated and relative to the scan root.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if len(m.patterns) == 0 || relativePath == "" {
		return false
	}

	relativePath = nfc.Normalize(relativePath)
	basename := path.Base(relativePath)

	ignored := false
	for _, p := range m.patterns {
		if p.negate != ignored {
			// Cannot change the outcome.
			continue
		}
		subject := basename
		if p.matchPath {
			subject = relativePath
		}
		if matched, _ := doublestar.Match(p.pattern, subject); matched {
			ignored = !p.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}

package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"nfc-go/internal/nfc"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignorePatterns []string

	mu       sync.Mutex
	matchers map[string]*IgnoreMatcher // scan root -> matcher
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// ignorePatterns apply to every scan root in addition to the root's ignore file.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{
		ignorePatterns: ignorePatterns,
		matchers:       make(map[string]*IgnoreMatcher),
	}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*nfc.Path, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// Stat the path
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return nfc.NewPath(absPath, info.IsDir()), nil
}

// ReadDir lists a directory in the order the operating system returns the
// entries. Unlike os.ReadDir, the result is not sorted.
func (m *OSFilesystemManager) ReadDir(absPath string) ([]fs.DirEntry, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", absPath, err)
	}
	return entries, nil
}

// Lstat returns fresh file info without following symlinks.
func (m *OSFilesystemManager) Lstat(absPath string) (fs.FileInfo, error) {
	return os.Lstat(absPath)
}

// SameFile reports whether a and b describe the same file.
func (m *OSFilesystemManager) SameFile(a, b fs.FileInfo) bool {
	return os.SameFile(a, b)
}

// Rename renames oldPath to newPath.
func (m *OSFilesystemManager) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// IsIgnored reports whether relativePath matches the configured patterns or
// the patterns in root's ignore file. The ignore file is read once per root.
func (m *OSFilesystemManager) IsIgnored(relativePath string, root string) (bool, error) {
	matcher, err := m.matcherFor(root)
	return matcher.Match(relativePath), err
}

func (m *OSFilesystemManager) matcherFor(root string) (*IgnoreMatcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if matcher, ok := m.matchers[root]; ok {
		return matcher, nil
	}

	// An unreadable ignore file is reported once; the configured patterns
	// still apply.
	filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))

	patterns := append(append(append([]string{}, defaultIgnorePatterns...), m.ignorePatterns...), filePatterns...)
	matcher := NewIgnoreMatcher(patterns)
	m.matchers[root] = matcher
	return matcher, err
}

// Compile-time check that OSFilesystemManager implements nfc.FilesystemManager interface
var _ nfc.FilesystemManager = (*OSFilesystemManager)(nil)

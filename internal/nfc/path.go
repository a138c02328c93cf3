package nfc

import (
	"path/filepath"
)

// Path is a directory (or file) the user pointed the tool at, resolved to an
// absolute location. Only FilesystemManager.Resolve should construct one.
type Path struct {
	absPath string
	isDir   bool
}

// NewPath wraps an already validated absolute path.
func NewPath(absPath string, isDir bool) *Path {
	return &Path{absPath: absPath, isDir: isDir}
}

func (p *Path) String() string { return p.absPath }

// Name is the final element exactly as stored on disk, in whatever
// normalization form it was created with.
func (p *Path) Name() string { return filepath.Base(p.absPath) }

func (p *Path) IsDir() bool { return p.isDir }

// NeedsNormalization reports whether the final element is not NFC.
func (p *Path) NeedsNormalization() bool { return IsCandidate(p.Name()) }

// NormalizedPath is where this path lives once its final element has been
// renamed to NFC. Ancestors are left untouched.
func (p *Path) NormalizedPath() string {
	return filepath.Join(filepath.Dir(p.absPath), Normalize(p.Name()))
}

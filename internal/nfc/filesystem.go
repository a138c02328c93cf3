package nfc

import "io/fs"

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path and stats it.
	Resolve(rawPath string) (*Path, error)

	// ReadDir lists the entries of a directory in the order the
	// filesystem returns them. No sorting is applied.
	ReadDir(absPath string) ([]fs.DirEntry, error)

	// Lstat returns fresh file info without following a final symlink.
	// A missing entry yields an error matching fs.ErrNotExist.
	Lstat(absPath string) (fs.FileInfo, error)

	// SameFile reports whether two infos describe the same filesystem entry.
	SameFile(a, b fs.FileInfo) bool

	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error

	// IsIgnored reports whether relativePath (slash separated, relative to
	// root) matches the configured ignore patterns or the root's ignore file.
	IsIgnored(relativePath string, root string) (bool, error)
}

package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	nfcfs "nfc-go/internal/fs"
	"nfc-go/internal/nfc"
)

// MockFile represents an entry in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	IsSymlink   bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Directory listings are returned in insertion order. Safe for concurrent use.
type MockFilesystemManager struct {
	mu           sync.Mutex
	files        map[string]*MockFile
	children     map[string][]string // directory path -> child names in insertion order
	ignore       *nfcfs.IgnoreMatcher
	readErrors   map[string]error
	renameErrors map[string]error
	renames      []string
}

// NewMockFilesystemManager creates a new mock filesystem containing only "/".
func NewMockFilesystemManager() *MockFilesystemManager {
	m := &MockFilesystemManager{
		files:        make(map[string]*MockFile),
		children:     make(map[string][]string),
		ignore:       nfcfs.NewIgnoreMatcher(nil),
		readErrors:   make(map[string]error),
		renameErrors: make(map[string]error),
	}
	m.files["/"] = &MockFile{Permissions: 0755, IsDirectory: true, ModTime: time.Now()}
	return m
}

// AddDirectory adds a directory, creating missing parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(filepath.Clean(path), &MockFile{Permissions: 0755, IsDirectory: true})
}

// AddFile adds a regular file, creating missing parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(filepath.Clean(path), &MockFile{Content: content, Permissions: 0644})
}

// AddSymlink adds a symbolic link entry. Links are never followed.
func (m *MockFilesystemManager) AddSymlink(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(filepath.Clean(path), &MockFile{Permissions: 0777 | fs.ModeSymlink, IsSymlink: true})
}

// SetIgnorePatterns replaces the ignore patterns used by IsIgnored.
func (m *MockFilesystemManager) SetIgnorePatterns(patterns []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignore = nfcfs.NewIgnoreMatcher(patterns)
}

// FailReadDir makes ReadDir of path return err.
func (m *MockFilesystemManager) FailReadDir(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrors[filepath.Clean(path)] = err
}

// FailRename makes Rename of oldPath return err.
func (m *MockFilesystemManager) FailRename(oldPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renameErrors[filepath.Clean(oldPath)] = err
}

// Exists reports whether an entry exists at path.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// Content returns the content of the file at path.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return f.Content, true
}

// Renames returns every successful rename as "old -> new", in order.
func (m *MockFilesystemManager) Renames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.renames...)
}

func (m *MockFilesystemManager) add(path string, file *MockFile) {
	if _, ok := m.files[path]; ok {
		return
	}
	parent := filepath.Dir(path)
	if _, ok := m.files[parent]; !ok {
		m.add(parent, &MockFile{Permissions: 0755, IsDirectory: true})
	}
	file.ModTime = time.Now()
	m.files[path] = file
	m.children[parent] = append(m.children[parent], filepath.Base(path))
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*nfc.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return nfc.NewPath(absPath, file.IsDirectory), nil
}

func (m *MockFilesystemManager) ReadDir(absPath string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	absPath = filepath.Clean(absPath)
	if err, ok := m.readErrors[absPath]; ok {
		return nil, err
	}
	dir, ok := m.files[absPath]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: absPath, Err: fs.ErrNotExist}
	}
	if !dir.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", absPath)
	}

	names := m.children[absPath]
	entries := make([]fs.DirEntry, 0, len(names))
	for _, name := range names {
		childPath := filepath.Join(absPath, name)
		entries = append(entries, fs.FileInfoToDirEntry(newMockFileInfo(childPath, m.files[childPath])))
	}
	return entries, nil
}

func (m *MockFilesystemManager) Lstat(absPath string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	absPath = filepath.Clean(absPath)
	file, ok := m.files[absPath]
	if !ok {
		return nil, &fs.PathError{Op: "lstat", Path: absPath, Err: fs.ErrNotExist}
	}
	return newMockFileInfo(absPath, file), nil
}

func (m *MockFilesystemManager) SameFile(a, b fs.FileInfo) bool {
	fa, okA := a.Sys().(*MockFile)
	fb, okB := b.Sys().(*MockFile)
	return okA && okB && fa == fb
}

// Rename moves an entry and, for directories, everything beneath it.
func (m *MockFilesystemManager) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath = filepath.Clean(oldPath)
	newPath = filepath.Clean(newPath)

	if err, ok := m.renameErrors[oldPath]; ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: err}
	}
	if _, ok := m.files[oldPath]; !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	newParent := filepath.Dir(newPath)
	if parent, ok := m.files[newParent]; !ok || !parent.IsDirectory {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrNotExist}
	}
	if oldPath == newPath {
		return nil
	}
	if _, ok := m.files[newPath]; ok {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	}

	// Move the entry and all descendants.
	prefix := oldPath + string(filepath.Separator)
	moved := func(p string) bool { return p == oldPath || strings.HasPrefix(p, prefix) }
	var paths []string
	for p := range m.files {
		if moved(p) {
			paths = append(paths, p)
		}
	}
	for _, p := range paths {
		f := m.files[p]
		delete(m.files, p)
		m.files[newPath+strings.TrimPrefix(p, oldPath)] = f
	}
	var dirs []string
	for p := range m.children {
		if moved(p) {
			dirs = append(dirs, p)
		}
	}
	for _, p := range dirs {
		names := m.children[p]
		delete(m.children, p)
		m.children[newPath+strings.TrimPrefix(p, oldPath)] = names
	}

	// Update parent listings, keeping position when the parent is unchanged.
	oldParent := filepath.Dir(oldPath)
	oldName, newName := filepath.Base(oldPath), filepath.Base(newPath)
	siblings := m.children[oldParent]
	for i, name := range siblings {
		if name != oldName {
			continue
		}
		if oldParent == newParent {
			siblings[i] = newName
		} else {
			m.children[oldParent] = append(siblings[:i:i], siblings[i+1:]...)
			m.children[newParent] = append(m.children[newParent], newName)
		}
		break
	}

	m.renames = append(m.renames, oldPath+" -> "+newPath)
	return nil
}

func (m *MockFilesystemManager) IsIgnored(relativePath string, root string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignore.Match(relativePath), nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile
}

func newMockFileInfo(path string, file *MockFile) *mockFileInfo {
	mode := file.Permissions
	if file.IsDirectory {
		mode |= fs.ModeDir
	}
	return &mockFileInfo{
		name:     filepath.Base(path),
		size:     int64(len(file.Content)),
		mode:     mode,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ nfc.FilesystemManager = (*MockFilesystemManager)(nil)

package sys

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MapEnv is an Env backed by a map. Zero Platform and Arch read as "linux"
// and "x64"; a zero Cwd reads as "/work".
type MapEnv struct {
	Vars map[string]string
	Cwd  string
	OS   string
	CPU  string
}

func (e MapEnv) Getenv(key string) string { return e.Vars[key] }

func (e MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := e.Vars[key]
	return v, ok
}

func (e MapEnv) Getwd() (string, error) {
	if e.Cwd == "" {
		return "/work", nil
	}
	return e.Cwd, nil
}

func (e MapEnv) Platform() string {
	if e.OS == "" {
		return "linux"
	}
	return e.OS
}

func (e MapEnv) Arch() string {
	if e.CPU == "" {
		return "x64"
	}
	return e.CPU
}

// MemFS is a concurrency-safe in-memory FS keyed by slash-separated paths.
type MemFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
	// Fail, when set, is consulted before every mutating operation.
	Fail func(op, name string) error
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func clean(name string) string { return path.Clean(strings.ReplaceAll(name, `\`, "/")) }

func (m *MemFS) fail(op, name string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, name)
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *MemFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	if err := m.fail("write", name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[clean(name)] = append([]byte(nil), data...)
	return nil
}

func (m *MemFS) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(name)
	_, ok := m.files[p]
	return ok || m.dirs[p]
}

func (m *MemFS) RealPath(name string) (string, error) {
	if !m.Exists(name) {
		return "", &fs.PathError{Op: "realpath", Path: name, Err: fs.ErrNotExist}
	}
	return clean(name), nil
}

func (m *MemFS) MkdirAll(dir string, _ fs.FileMode) error {
	if err := m.fail("mkdir", dir); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for p := clean(dir); p != "." && p != "/"; p = path.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

func (m *MemFS) ReadDir(dir string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := clean(dir)
	seen := map[string]bool{}
	var entries []fs.DirEntry
	for p := range m.files {
		if path.Dir(p) == d && !seen[p] {
			seen[p] = true
			entries = append(entries, memEntry{name: path.Base(p)})
		}
	}
	for p := range m.dirs {
		if path.Dir(p) == d && !seen[p] {
			seen[p] = true
			entries = append(entries, memEntry{name: path.Base(p), dir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemFS) Rename(oldpath, newpath string) error {
	if err := m.fail("rename", newpath); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[clean(oldpath)]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(m.files, clean(oldpath))
	m.files[clean(newpath)] = data
	return nil
}

func (m *MemFS) Remove(name string) error {
	if err := m.fail("remove", name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(name)
	if _, ok := m.files[p]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, p)
	return nil
}

// Files returns every stored file path, sorted.
func (m *MemFS) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.files))
	for p := range m.files {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

type memEntry struct {
	name string
	dir  bool
}

func (e memEntry) Name() string { return e.name }
func (e memEntry) IsDir() bool  { return e.dir }

func (e memEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}

func (e memEntry) Info() (fs.FileInfo, error) { return memInfo(e), nil }

type memInfo memEntry

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return 0 }
func (i memInfo) Mode() fs.FileMode  { return memEntry(i).Type() }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

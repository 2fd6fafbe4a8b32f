// Package sys is the small set of host capabilities the generator consumes:
// a filesystem and a process environment. OS implementations back the CLI;
// in-memory implementations back tests.
package sys

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// FS is the filesystem capability.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Exists(name string) bool
	RealPath(name string) (string, error)
	MkdirAll(dir string, perm fs.FileMode) error
	ReadDir(dir string) ([]fs.DirEntry, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// Env is the process environment capability.
type Env interface {
	Getenv(key string) string
	LookupEnv(key string) (string, bool)
	Getwd() (string, error)
	Platform() string
	Arch() string
}

// OSFS is the host filesystem.
type OSFS struct{}

func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (OSFS) RealPath(name string) (string, error) { return filepath.EvalSymlinks(name) }

func (OSFS) MkdirAll(dir string, perm fs.FileMode) error { return os.MkdirAll(dir, perm) }

func (OSFS) ReadDir(dir string) ([]fs.DirEntry, error) { return os.ReadDir(dir) }

func (OSFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (OSFS) Remove(name string) error { return os.Remove(name) }

// OSEnv is the host process environment.
type OSEnv struct{}

func (OSEnv) Getenv(key string) string { return os.Getenv(key) }

func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

func (OSEnv) Getwd() (string, error) { return os.Getwd() }

// Platform returns the host platform using the names gyp uses: "win32" for
// windows and "sunos" for solaris.
func (OSEnv) Platform() string { return PlatformName(runtime.GOOS) }

func (OSEnv) Arch() string { return ArchName(runtime.GOARCH) }

// PlatformName maps a GOOS value to a gyp platform name.
func PlatformName(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "solaris", "illumos":
		return "sunos"
	default:
		return goos
	}
}

// ArchName maps a GOARCH value to a gyp architecture name.
func ArchName(goarch string) string {
	switch goarch {
	case "386":
		return "ia32"
	case "amd64":
		return "x64"
	default:
		return goarch
	}
}

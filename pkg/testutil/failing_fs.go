package testutil

import (
	"io/fs"
	"strings"
	gosync "sync"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// FailingFS wraps a types.FS. Mutating calls on a path containing one of
// the Fail substrings return ErrPermission; every mutating call is counted.
type FailingFS struct {
	types.FS
	Fail []string

	mu     gosync.Mutex
	writes []string
}

// NewFailingFS wraps inner
func NewFailingFS(inner types.FS, fail ...string) *FailingFS {
	return &FailingFS{FS: inner, Fail: fail}
}

// Writes returns the mutating operations seen so far as "op path"
func (f *FailingFS) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// Reset forgets the recorded writes
func (f *FailingFS) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}

func (f *FailingFS) check(op, path string) error {
	f.mu.Lock()
	f.writes = append(f.writes, op+" "+path)
	f.mu.Unlock()

	for _, s := range f.Fail {
		if strings.Contains(path, s) {
			return &fs.PathError{Op: op, Path: path, Err: fs.ErrPermission}
		}
	}
	return nil
}

func (f *FailingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check("write", name); err != nil {
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FailingFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check("chmod", name); err != nil {
		return err
	}
	return f.FS.Chmod(name, mode)
}

func (f *FailingFS) MkdirAll(path string, perm fs.FileMode) error {
	// creating an existing directory is not a write
	if info, err := f.FS.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	if err := f.check("mkdir", path); err != nil {
		return err
	}
	return f.FS.MkdirAll(path, perm)
}

func (f *FailingFS) MkdirTemp(dir, pattern string) (string, error) {
	if err := f.check("mkdir", dir); err != nil {
		return "", err
	}
	return f.FS.MkdirTemp(dir, pattern)
}

func (f *FailingFS) Symlink(oldname, newname string) error {
	if err := f.check("symlink", newname); err != nil {
		return err
	}
	return f.FS.Symlink(oldname, newname)
}

func (f *FailingFS) Remove(name string) error {
	if err := f.check("remove", name); err != nil {
		return err
	}
	return f.FS.Remove(name)
}

func (f *FailingFS) RemoveAll(path string) error {
	if err := f.check("remove", path); err != nil {
		return err
	}
	return f.FS.RemoveAll(path)
}

func (f *FailingFS) Rename(oldpath, newpath string) error {
	if err := f.check("rename", newpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

package filesystem

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Copy replaces dst with a copy of src, creating parent directories as
// needed. Directories are copied recursively; symlinks are recreated, not
// followed.
func Copy(fsys types.FS, src, dst string) error {
	return copyTop(fsys, src, dst, fsys.Lstat)
}

// CopyFollow is Copy except that a symlink at src itself is resolved and
// the file or directory it points at is copied. Symlinks inside a copied
// directory are still recreated.
func CopyFollow(fsys types.FS, src, dst string) error {
	return copyTop(fsys, src, dst, fsys.Stat)
}

func copyTop(fsys types.FS, src, dst string, stat func(string) (fs.FileInfo, error)) error {
	info, err := stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrMissingSource, "source %s does not exist", src).
				WithDetail("path", src)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}

	// a regular file over a regular file is replaced atomically by WriteFile
	if !info.Mode().IsRegular() || !regularOrMissing(fsys, dst) {
		if err := Remove(fsys, dst); err != nil {
			return err
		}
	}

	return copyEntry(fsys, src, dst, info)
}

func regularOrMissing(fsys types.FS, path string) bool {
	info, err := fsys.Lstat(path)
	if err != nil {
		return os.IsNotExist(err)
	}
	return info.Mode().IsRegular()
}

// Remove deletes path whatever it is. A missing path is not an error.
func Remove(fsys types.FS, path string) error {
	if _, err := fsys.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	if err := fsys.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "cannot remove %s", path).
			WithDetail("path", path)
	}
	return nil
}

func copyEntry(fsys types.FS, src, dst string, info fs.FileInfo) error {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", src)
		}
		if err := fsys.Symlink(target, dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot create link %s", dst)
		}
		return nil

	case info.IsDir():
		if err := fsys.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
		}
		entries, err := fsys.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", src)
		}
		for _, entry := range entries {
			childInfo, err := fsys.Lstat(filepath.Join(src, entry.Name()))
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", entry.Name())
			}
			if err := copyEntry(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()), childInfo); err != nil {
				return err
			}
		}
		return fsys.Chmod(dst, info.Mode().Perm())

	case info.Mode().IsRegular():
		data, err := fsys.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
		}
		if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst).
				WithDetail("path", dst)
		}
		if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrPermission, "cannot set mode on %s", dst)
		}
		return nil

	default:
		return errors.Newf(errors.ErrInvalidInput, "%s is not a regular file, directory or symlink", src)
	}
}

// Equal reports whether dst already matches src: same kind, same content,
// same permission bits for files and directories, same target for
// symlinks. A missing dst is simply not equal.
func Equal(fsys types.FS, src, dst string) (bool, error) {
	return EqualWithMode(fsys, src, dst, 0)
}

// EqualWithMode is Equal where dst's own permission bits are expected to be
// src's plus extra, as left behind by MakeExecutable.
func EqualWithMode(fsys types.FS, src, dst string, extra fs.FileMode) (bool, error) {
	return equalTop(fsys, src, dst, extra, fsys.Lstat)
}

// EqualFollow is Equal against what CopyFollow would leave at dst.
func EqualFollow(fsys types.FS, src, dst string) (bool, error) {
	return equalTop(fsys, src, dst, 0, fsys.Stat)
}

func equalTop(fsys types.FS, src, dst string, extra fs.FileMode, stat func(string) (fs.FileInfo, error)) (bool, error) {
	srcInfo, err := stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, errors.Wrapf(err, errors.ErrMissingSource, "source %s does not exist", src)
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	dstInfo, err := fsys.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", dst)
	}
	return equalEntry(fsys, src, dst, srcInfo, dstInfo, extra)
}

func equalEntry(fsys types.FS, src, dst string, srcInfo, dstInfo fs.FileInfo, extra fs.FileMode) (bool, error) {
	if srcInfo.Mode().Type() != dstInfo.Mode().Type() {
		return false, nil
	}

	switch {
	case srcInfo.Mode()&fs.ModeSymlink != 0:
		a, err := fsys.Readlink(src)
		if err != nil {
			return false, err
		}
		b, err := fsys.Readlink(dst)
		if err != nil {
			return false, err
		}
		return a == b, nil

	case srcInfo.IsDir():
		if srcInfo.Mode().Perm()|extra != dstInfo.Mode().Perm() {
			return false, nil
		}
		srcEntries, err := fsys.ReadDir(src)
		if err != nil {
			return false, err
		}
		dstEntries, err := fsys.ReadDir(dst)
		if err != nil {
			return false, err
		}
		if len(srcEntries) != len(dstEntries) {
			return false, nil
		}
		// ReadDir returns entries sorted by name
		for i := range srcEntries {
			if srcEntries[i].Name() != dstEntries[i].Name() {
				return false, nil
			}
			s := filepath.Join(src, srcEntries[i].Name())
			d := filepath.Join(dst, dstEntries[i].Name())
			si, err := fsys.Lstat(s)
			if err != nil {
				return false, err
			}
			di, err := fsys.Lstat(d)
			if err != nil {
				return false, err
			}
			eq, err := equalEntry(fsys, s, d, si, di, 0)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil

	case srcInfo.Mode().IsRegular():
		if srcInfo.Mode().Perm()|extra != dstInfo.Mode().Perm() || srcInfo.Size() != dstInfo.Size() {
			return false, nil
		}
		a, err := fsys.ReadFile(src)
		if err != nil {
			return false, err
		}
		b, err := fsys.ReadFile(dst)
		if err != nil {
			return false, err
		}
		return bytes.Equal(a, b), nil

	default:
		return false, fmt.Errorf("unsupported file type at %s", src)
	}
}

// MakeExecutable adds execute permission for user, group and others,
// like chmod +x.
func MakeExecutable(fsys types.FS, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	if err := fsys.Chmod(path, info.Mode().Perm()|0111); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "chmod failed on %s", path)
	}
	return nil
}

// Exists reports whether path exists without following a final symlink.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// TempSibling creates an empty directory next to path, so a later Replace
// is a same-filesystem rename.
func TempSibling(fsys types.FS, path string) (string, error) {
	parent := filepath.Dir(path)
	if err := fsys.MkdirAll(parent, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", parent)
	}
	dir, err := fsys.MkdirTemp(parent, "."+filepath.Base(path)+".dotsync-*")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create staging directory for %s", path)
	}
	return dir, nil
}

// Replace moves staged into place at dst, removing whatever dst held.
func Replace(fsys types.FS, staged, dst string) error {
	if err := Remove(fsys, dst); err != nil {
		return err
	}
	if err := fsys.Rename(staged, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s into place", dst)
	}
	return nil
}

// Package archive unpacks tar archives, optionally compressed with gzip,
// xz or zstd, into a directory.
package archive

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// DetectType guesses the payload type from a file name
func DetectType(name string) (types.PayloadType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return types.PayloadTarGz, true
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return types.PayloadTarXz, true
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return types.PayloadTarZst, true
	case strings.HasSuffix(lower, ".tar"):
		return types.PayloadTar, true
	}
	return "", false
}

// decompress wraps r in the reader for the payload's compression
func decompress(r io.Reader, kind types.PayloadType) (io.Reader, func(), error) {
	switch kind {
	case types.PayloadTar:
		return r, func() {}, nil
	case types.PayloadTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case types.PayloadTarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() {}, nil
	case types.PayloadTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	return nil, nil, errors.Newf(errors.ErrArchive, "unsupported archive type %q", kind)
}

// Extract unpacks the archive read from r into dir, which is created if
// needed. Entries that would land outside dir are rejected, as are symlinks
// pointing outside it and members whose parent resolves outside it through
// an earlier symlink. Regular file and directory modes are preserved.
func Extract(ctx context.Context, r io.Reader, kind types.PayloadType, dir string) error {
	logger := logging.GetLogger("archive")

	plain, closeFn, err := decompress(r, kind)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to open %s stream", kind)
	}
	defer closeFn()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", dir)
	}
	x := &extractor{dir: filepath.Clean(dir), resolvedDir: resolvedDir}

	tr := tar.NewReader(plain)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCanceled, "extraction canceled")
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrArchive, "failed to read archive")
		}

		target, err := entryPath(dir, hdr.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		if err := x.extractEntry(tr, hdr, target); err != nil {
			return err
		}
		count++
	}

	if err := x.checkLinks(); err != nil {
		return err
	}

	logger.Debug().Str("dir", dir).Int("entries", count).Str("type", string(kind)).Msg("Extracted archive")
	return nil
}

// entryPath maps an archive member name to its destination under dir
func entryPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/")))
	if clean == "." {
		return "", nil
	}
	if err := paths.ValidatePathSecurity(clean); err != nil {
		return "", errors.Wrapf(err, errors.ErrArchive, "unsafe archive entry %q", name)
	}
	target := filepath.Join(dir, clean)
	if !paths.ContainsPath(dir, target) {
		return "", errors.Newf(errors.ErrArchive, "archive entry %q escapes the destination", name)
	}
	return target, nil
}

// extractor writes members under dir. resolvedDir is dir with symlinks resolved.
type extractor struct {
	dir         string
	resolvedDir string
	links       []string
}

// checkParent resolves the deepest existing ancestor of target on disk and
// rejects the member when that lands outside the destination. Components
// below it do not exist yet and are created as plain directories.
func (x *extractor) checkParent(name, target string) error {
	p := filepath.Dir(target)
	for p != x.dir && paths.ContainsPath(x.dir, p) {
		if _, err := os.Lstat(p); err == nil {
			break
		}
		p = filepath.Dir(p)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot resolve the parent of %q", name)
	}
	if !paths.ContainsPath(x.resolvedDir, resolved) {
		return errors.Newf(errors.ErrArchive, "archive entry %q escapes the destination through a symlink", name)
	}
	return nil
}

// clearLink removes a symlink left at target by an earlier member, so the
// new member replaces it instead of being written through it.
func clearLink(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	if err := os.Remove(target); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "failed to replace %s", target)
	}
	return nil
}

func (x *extractor) extractEntry(tr *tar.Reader, hdr *tar.Header, target string) error {
	mode := fs.FileMode(hdr.Mode).Perm()

	switch hdr.Typeflag {
	case tar.TypeDir, tar.TypeReg, tar.TypeSymlink, tar.TypeLink:
		if err := x.checkParent(hdr.Name, target); err != nil {
			return err
		}
		if err := clearLink(target); err != nil {
			return err
		}
	default:
		// devices, fifos and pax metadata have no place in a dotfiles tree
		return nil
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0700); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
		}
		return os.Chmod(target, mode|0700)

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", target)
		}
		if _, err := io.Copy(f, tr); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, errors.ErrArchive, "failed to extract %s", hdr.Name)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
		}
		return os.Chmod(target, mode)

	case tar.TypeSymlink:
		linkTarget := hdr.Linkname
		resolved := linkTarget
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(target), resolved)
		}
		if !paths.ContainsPath(x.dir, resolved) {
			return errors.Newf(errors.ErrArchive, "symlink %q points outside the destination", hdr.Name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		_ = os.Remove(target)
		if err := os.Symlink(linkTarget, target); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to link %s", target)
		}
		x.links = append(x.links, target)
		return nil

	case tar.TypeLink:
		source, err := entryPath(x.dir, hdr.Linkname)
		if err != nil || source == "" {
			return errors.Newf(errors.ErrArchive, "hard link %q has an invalid target", hdr.Name)
		}
		if err := x.checkParent(hdr.Linkname, source); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		_ = os.Remove(target)
		if err := os.Link(source, target); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to link %s", target)
		}
		return nil
	}
	return nil
}

// checkLinks resolves every extracted symlink once the tree is complete.
// A chain such as a -> . followed by a/b -> .. passes the textual check
// member by member but resolves outside the destination on disk.
func (x *extractor) checkLinks() error {
	for _, link := range x.links {
		if _, err := os.Lstat(link); err != nil {
			// replaced or removed by a later member
			continue
		}
		resolved, err := filepath.EvalSymlinks(link)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.ErrArchive, "cannot resolve symlink %s", link)
		}
		if !paths.ContainsPath(x.resolvedDir, resolved) {
			rel, _ := filepath.Rel(x.dir, link)
			return errors.Newf(errors.ErrArchive, "symlink %q resolves outside the destination", filepath.ToSlash(rel))
		}
	}
	return nil
}

// ExtractFile unpacks the archive at path into dir, detecting the type
// from the file name when kind is empty.
func ExtractFile(ctx context.Context, path string, kind types.PayloadType, dir string) error {
	if kind == "" {
		detected, ok := DetectType(path)
		if !ok {
			return errors.Newf(errors.ErrArchive, "cannot tell the archive type of %s", filepath.Base(path))
		}
		kind = detected
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
	}
	defer func() {
		_ = f.Close()
	}()

	return Extract(ctx, f, kind, dir)
}

// Root returns the directory that should be installed from an extracted
// archive: dirName when given, the single top-level directory when the
// archive has exactly one, otherwise dir itself.
func Root(dir, dirName string) (string, error) {
	if dirName != "" {
		root := filepath.Join(dir, filepath.FromSlash(dirName))
		if !paths.ContainsPath(dir, root) {
			return "", errors.Newf(errors.ErrArchive, "dir_name %q escapes the archive", dirName)
		}
		if _, err := os.Stat(root); err != nil {
			return "", errors.Wrapf(err, errors.ErrArchive, "archive has no %s directory", dirName)
		}
		return root, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

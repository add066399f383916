package hashutil

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CalculateFileChecksum calculates the SHA256 checksum of a file
func CalculateFileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// CalculateTreeChecksum hashes a file, symlink or whole directory tree.
// Relative names, permission bits, link targets and file contents all feed
// the digest, so two trees hash equal exactly when a copy would be a no-op.
func CalculateTreeChecksum(root string) (string, error) {
	hash := sha256.New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(hash, "L %s %s\n", filepath.ToSlash(rel), target)
		case info.IsDir():
			fmt.Fprintf(hash, "D %s %o\n", filepath.ToSlash(rel), info.Mode().Perm())
		default:
			sum, err := CalculateFileChecksum(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(hash, "F %s %o %s\n", filepath.ToSlash(rel), info.Mode().Perm(), sum)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// ValidatePath checks for empty paths, null bytes and excessive length.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidatePathSecurity performs security-focused validation on a path.
// It checks for common path traversal attacks and suspicious patterns.
func ValidatePathSecurity(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.New(errors.ErrInvalidInput,
				"path contains parent directory references")
		}
	}

	for _, r := range path {
		if r == '\u202e' || // Right-to-left override
			r == '\u200b' || // Zero-width space
			r == '\u00ad' { // Soft hyphen
			return errors.New(errors.ErrInvalidInput,
				"path contains suspicious Unicode characters")
		}
	}

	return nil
}

// SanitizePath expands the home directory and cleans the path.
func SanitizePath(path string) string {
	cleaned := filepath.Clean(ExpandHome(path))
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// ContainsPath checks if child is contained within parent.
// Both paths are normalized before comparison.
func ContainsPath(parent, child string) bool {
	parent = SanitizePath(parent)
	child = SanitizePath(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Package security validates operator-supplied file paths before they are
// read.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath        = errors.New("file path cannot be empty")
	ErrForbiddenChar    = errors.New("file path contains forbidden character")
	ErrUnsupportedExt   = errors.New("file has an unsupported extension")
	ErrNotRegularFile   = errors.New("file path is not a regular file")
	shellMetacharacters = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}
)

// ValidateFilePath rejects empty paths and shell metacharacters, then
// returns the absolute path with symlinks resolved. A path that does not
// exist yet is returned cleaned but unresolved.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	for _, char := range shellMetacharacters {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, char, path)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ReadFile validates path and reads it. When extensions are given the
// file must carry one of them (compared case-insensitively, with the dot).
func ReadFile(path string, extensions ...string) ([]byte, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}

	if len(extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(clean))
		allowed := false
		for _, e := range extensions {
			if ext == strings.ToLower(e) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedExt, path, strings.Join(extensions, ", "))
		}
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}

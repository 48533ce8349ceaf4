// Package security validates the filesystem paths taken from configuration.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory checks that filePath stays inside safeDir once
// both are resolved to absolute, symlink-free form. The source, artifact, and
// fallback paths all come from config, so a stray value must not be able to
// point the compiler or executor outside the workspace.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", filePath, err)
	}
	absSafeDir, err := filepath.Abs(filepath.Clean(safeDir))
	if err != nil {
		return fmt.Errorf("failed to resolve workspace directory %q: %w", safeDir, err)
	}

	// Resolve symlinks where the path (or its nearest existing ancestor)
	// exists, so a link inside the workspace cannot smuggle the path out.
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	} else if resolvedParent, err := filepath.EvalSymlinks(filepath.Dir(absPath)); err == nil {
		absPath = filepath.Join(resolvedParent, filepath.Base(absPath))
	}
	if resolved, err := filepath.EvalSymlinks(absSafeDir); err == nil {
		absSafeDir = resolved
	}

	rel, err := filepath.Rel(absSafeDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes workspace directory %q", filePath, safeDir)
	}
	return nil
}

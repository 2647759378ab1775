// Package sanitize validates caller-supplied paths and repository names.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Validation errors for security checks.
var (
	// ErrPathEscape indicates a path resolves outside the allowed root.
	ErrPathEscape = errors.New("path escapes allowed root")

	// ErrEmptyPath indicates an empty path was provided.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrInvalidRepoName indicates a repository name is not in owner/name form.
	ErrInvalidRepoName = errors.New("invalid repository name")
)

// namePartPattern matches a single valid owner or repository name segment.
// GitHub allows alphanumerics, hyphens, underscores and dots, up to 100 chars.
var namePartPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,99}$`)

// ValidatePath canonicalizes a candidate path, resolving ".." segments and
// symbolic links, and verifies it is a descendant of baseRoot. It returns the
// resolved absolute path, or ErrPathEscape if the path lands outside the root.
// Symlinks are followed on the deepest existing ancestor, so a symlink under
// the root pointing outside it is rejected even when the final components do
// not exist yet.
//
// Every filesystem write (clone destination) and read (local scan) goes
// through this check first.
func ValidatePath(path, baseRoot string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if baseRoot == "" {
		return "", fmt.Errorf("base root cannot be empty")
	}

	absRoot, err := filepath.Abs(baseRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base root: %w", err)
	}
	resolvedRoot, err := resolveSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base root: %w", err)
	}

	// Relative candidates are interpreted against the root, not the
	// process working directory.
	absPath := filepath.Clean(path)
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(absRoot, absPath)
	}

	resolved, err := resolveSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}

	rel, err := filepath.Rel(resolvedRoot, resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}

	return resolved, nil
}

// resolveSymlinks evaluates symbolic links on the deepest existing ancestor
// of path and rejoins the nonexistent remainder, so a path about to be
// created is judged by where it would actually land on disk.
func resolveSymlinks(path string) (string, error) {
	remainder := ""
	p := path
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return filepath.Join(p, remainder), nil
		}
		remainder = filepath.Join(filepath.Base(p), remainder)
		p = parent
	}
}

// ParseRepoName splits a "owner/name" repository reference and validates both
// segments. Anything else, including extra slashes or traversal characters,
// fails with ErrInvalidRepoName.
func ParseRepoName(repoName string) (owner, name string, err error) {
	parts := strings.Split(repoName, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q must be in owner/name form", ErrInvalidRepoName, repoName)
	}
	owner, name = parts[0], parts[1]
	if !namePartPattern.MatchString(owner) || !namePartPattern.MatchString(name) {
		return "", "", fmt.Errorf("%w: %q contains invalid characters", ErrInvalidRepoName, repoName)
	}
	if strings.HasSuffix(name, ".git") {
		return "", "", fmt.Errorf("%w: %q must not carry a .git suffix", ErrInvalidRepoName, repoName)
	}
	return owner, name, nil
}

// Package pathguard canonicalizes user supplied paths and keeps them inside
// an optional allowed root.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"
)

// Guard validates paths against a fixed allowed root. An empty root disables
// the containment checks.
type Guard struct {
	root string
}

// New creates a guard for root
func New(root string) *Guard {
	return &Guard{root: root}
}

// Root returns the configured allowed root
func (g *Guard) Root() string {
	return g.root
}

// Input validates a path the caller wants to read
func (g *Guard) Input(path string) (string, error) {
	return Validate(path, g.root)
}

// Output validates dir joined with a generated file name
func (g *Guard) Output(dir, name string) (string, error) {
	return ValidateOutput(dir, name, g.root)
}

// Validate returns the canonical form of path. The path must be absolute,
// must not contain ".." segments and, when allowedRoot is set, must stay
// inside it both lexically and after resolving symlinks.
func Validate(path, allowedRoot string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", newPathError(path, ErrEmptyPath)
	}
	if hasParentSegment(path) {
		return "", newPathError(path, ErrTraversal)
	}
	if !filepath.IsAbs(path) {
		return "", newPathError(path, ErrRelativePath)
	}

	clean := filepath.Clean(path)
	resolved, err := resolveExisting(clean)
	if err != nil {
		return "", newPathError(path, err)
	}

	if allowedRoot == "" {
		return resolved, nil
	}

	root, resolvedRoot, err := canonicalRoot(allowedRoot)
	if err != nil {
		return "", newPathError(path, err)
	}
	if !isWithin(root, clean) && !isWithin(resolvedRoot, clean) {
		return "", newPathError(path, ErrOutsideRoot)
	}
	if !isWithin(resolvedRoot, resolved) {
		return "", newPathError(path, ErrSymlinkEscape)
	}

	return resolved, nil
}

// ValidateOutput validates the path formed by dir and a generated file name.
// The name must be a single path element.
func ValidateOutput(dir, name, allowedRoot string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", newPathError(filepath.Join(dir, name), ErrInvalidName)
	}
	return Validate(filepath.Join(dir, name), allowedRoot)
}

func hasParentSegment(path string) bool {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, segment := range segments {
		if segment == ".." {
			return true
		}
	}
	return false
}

func canonicalRoot(root string) (string, string, error) {
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", "", err
		}
		root = abs
	}
	root = filepath.Clean(root)
	resolved, err := resolveExisting(root)
	if err != nil {
		return "", "", err
	}
	return root, resolved, nil
}

// resolveExisting resolves symlinks in the longest existing prefix of path
// and re-attaches the components that do not exist yet.
func resolveExisting(path string) (string, error) {
	existing := path
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

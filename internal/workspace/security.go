package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard confines writes to a single root directory.
// The root is resolved through symlinks once, when the guard is created.
type Guard struct {
	root string
}

// NewGuard resolves root and returns a guard for it. An empty root means the
// current working directory.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return &Guard{root: resolved}, nil
}

// Root returns the resolved root directory
func (g *Guard) Root() string {
	return g.root
}

// Check verifies that absPath resolves to within the root. Existing path
// components are resolved through symlinks, so a link pointing outside the
// root is caught even when the final file does not exist yet.
func (g *Guard) Check(absPath string) error {
	cleaned := filepath.Clean(absPath)

	resolved, err := resolveExistingPath(cleaned)
	if err != nil {
		return fmt.Errorf("access denied: cannot resolve path %q: %w", absPath, err)
	}

	if !isWithinRoot(resolved, g.root) {
		return fmt.Errorf("access denied: path %q resolves outside the workspace", absPath)
	}
	return nil
}

// CheckWrite is Check plus a refusal to write through an existing symlink.
func (g *Guard) CheckWrite(absPath string) error {
	if err := g.Check(absPath); err != nil {
		return err
	}

	info, err := os.Lstat(absPath)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("access denied: refusing to write through symlink %q", absPath)
	}
	return nil
}

// resolveExistingPath finds the deepest existing ancestor of path, resolves
// it with EvalSymlinks and re-appends the part that does not exist yet.
// This also handles macOS firmlinks (/var -> /private/var).
func resolveExistingPath(path string) (string, error) {
	current := path
	var tail []string

	for {
		_, err := os.Lstat(current)
		if err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", fmt.Errorf("cannot resolve path %q: %w", current, err)
			}
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return filepath.Clean(resolved), nil
		}

		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Clean(path), nil
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}

// isWithinRoot checks if path is within or equal to root.
func isWithinRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

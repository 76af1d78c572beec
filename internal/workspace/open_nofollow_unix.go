//go:build !windows

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// openNoFollow opens path without following a final symlink, then re-checks
// that the opened file still lives under root. This closes the window between
// CheckWrite and the open.
func openNoFollow(path string, flag int, perm os.FileMode, root string) (*os.File, error) {
	f, err := os.OpenFile(path, flag|syscall.O_NOFOLLOW, perm)
	if err != nil {
		return nil, err
	}

	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("post-open path resolution failed: %w", err)
	}
	if !isWithinRoot(realPath, root) {
		f.Close()
		return nil, fmt.Errorf("access denied: file %q resolved outside workspace after open", path)
	}
	return f, nil
}

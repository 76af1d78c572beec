//go:build windows

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// openNoFollow opens path for writing. Windows has no O_NOFOLLOW, so only
// the post-open check guards against a swapped link.
func openNoFollow(path string, flag int, perm os.FileMode, root string) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
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

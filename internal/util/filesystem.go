package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// SafeRemoveDir removes dir unless it is the root or the working directory.
func SafeRemoveDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve abs path: %w", err)
	}

	if abs == string(filepath.Separator) {
		return fmt.Errorf("refused to remove root directory %q", abs)
	}

	if cwd, err := os.Getwd(); err == nil && abs == cwd {
		return fmt.Errorf("refused to remove current working directory %q", abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", abs)
	}

	return os.RemoveAll(abs)
}

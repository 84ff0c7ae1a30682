package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MoveFile moves src to dst, creating dst's parent directory if needed.
// os.Rename is tried first; if the paths are on different filesystems the
// file is copied and the source removed.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dst), err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

// copyFile copies src to dst preserving the source file mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// IsEmptyDir reports whether the directory at name contains no entries.
func IsEmptyDir(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// RemoveEmptyDirs removes every empty directory under root, including root
// itself if the cleanup leaves it empty. Directories are visited bottom-up
// so nested empty chains collapse in one pass.
func RemoveEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Deepest first
	for i := len(dirs) - 1; i >= 0; i-- {
		empty, err := IsEmptyDir(dirs[i])
		if err != nil {
			return err
		}
		if empty {
			if err := os.Remove(dirs[i]); err != nil {
				return fmt.Errorf("failed to remove empty directory %s: %w", dirs[i], err)
			}
		}
	}
	return nil
}

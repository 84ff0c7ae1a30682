// Package fileutil provides the file system scanning and move primitives
// used by the rename planner and applier.
package fileutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior.
type ScanOptions struct {
	// NameContains matches files whose base name contains the substring
	NameContains string
	// ContentContains matches files whose content contains the literal
	// byte substring. Applied to every file, including binaries; the
	// caller decides how to treat binary matches.
	ContentContains string
	// ExcludeDirs is a list of directory names to exclude (e.g. ".git", "__pycache__")
	ExcludeDirs []string
	// SkipPaths is a set of root-relative paths that are never reported
	SkipPaths map[string]bool
}

// ScanResult contains the results of a directory scan.
type ScanResult struct {
	// Files contains root-relative paths of all matched files, sorted
	Files []string
	// Errors contains any non-fatal errors encountered during scanning
	Errors []error
}

// Scan walks the tree rooted at dir and reports regular files matching the
// options. Paths in the result are relative to dir. Non-fatal read errors
// are collected and scanning continues.
func Scan(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	var contentNeedle []byte
	if opts.ContentContains != "" {
		contentNeedle = []byte(opts.ContentContains)
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		if path == dir {
			return nil
		}

		if d.IsDir() {
			if excludeMap[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Regular files only; sockets, devices, and symlinks are not
		// candidates for renaming or rewriting
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}

		if opts.SkipPaths[relPath] {
			return nil
		}

		if opts.NameContains != "" && !strings.Contains(d.Name(), opts.NameContains) {
			return nil
		}

		if contentNeedle != nil {
			data, err := os.ReadFile(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to read %s: %w", path, err))
				return nil
			}
			if !bytes.Contains(data, contentNeedle) {
				return nil
			}
		}

		result.Files = append(result.Files, relPath)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}

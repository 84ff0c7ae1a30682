// Package vcs provides git operations for history-preserving renames.
//
// All operations go through an injectable Runner so tests can fake the git
// binary. When no runner is supplied, commands execute via os/exec in the
// configured working directory.
package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output string, err error)
}

// ExecRunner executes commands via os/exec.
type ExecRunner struct {
	// WorkDir is the working directory for commands (empty = current dir)
	WorkDir string
}

// Run executes the command and returns its combined output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%w: %s", err, string(output))
	}
	return string(output), nil
}

// Git provides the subset of git operations the rename needs.
type Git struct {
	runner Runner
}

// New creates a Git bound to the given working directory.
func New(workDir string) *Git {
	return &Git{runner: &ExecRunner{WorkDir: workDir}}
}

// NewWithRunner creates a Git with a custom command runner.
// Useful for testing.
func NewWithRunner(runner Runner) *Git {
	return &Git{runner: runner}
}

// IsWorkTree reports whether the working directory is inside a git work tree.
// A missing git binary or a directory outside any repository both report false.
func (g *Git) IsWorkTree(ctx context.Context) bool {
	output, err := g.runner.Run(ctx, "git", "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) == "true"
}

// IsTracked reports whether path is tracked by git.
func (g *Git) IsTracked(ctx context.Context, path string) bool {
	_, err := g.runner.Run(ctx, "git", "ls-files", "--error-unmatch", "--", path)
	return err == nil
}

// Move renames src to dst with git mv, preserving per-file history.
func (g *Git) Move(ctx context.Context, src, dst string) error {
	if _, err := g.runner.Run(ctx, "git", "mv", "--", src, dst); err != nil {
		return fmt.Errorf("git mv %s %s failed: %w", src, dst, err)
	}
	return nil
}

// Stage adds the given paths to the index.
func (g *Git) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.runner.Run(ctx, "git", args...); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

// StageAll stages every change in the work tree, including new, deleted,
// and modified paths, so the run is reviewable as a single diff. Paths in
// exclude are kept out of the index via pathspec exclusion, which keeps
// ephemeral files like the run lock from being staged.
func (g *Git) StageAll(ctx context.Context, exclude ...string) error {
	args := []string{"add", "-A"}
	if len(exclude) > 0 {
		args = append(args, "--")
		for _, path := range exclude {
			args = append(args, ":!"+path)
		}
	}
	if _, err := g.runner.Run(ctx, "git", args...); err != nil {
		return fmt.Errorf("git add -A failed: %w", err)
	}
	return nil
}

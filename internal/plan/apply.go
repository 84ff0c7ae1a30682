package plan

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomas/rebrand/internal/filelock"
	"github.com/tomas/rebrand/internal/fileutil"
	"github.com/tomas/rebrand/internal/logger"
	"github.com/tomas/rebrand/internal/vcs"
)

// Applier executes a computed plan against the real tree, strictly in
// order and fail-fast: the first unexpected move or write error aborts
// the run and partial state is left for manual resolution.
type Applier struct {
	// Git performs history-preserving moves and staging. Nil means no
	// version control was detected and all moves are plain.
	Git *vcs.Git

	// Log receives one progress line per mutation
	Log logger.Logger

	// DryRun prints every intended operation without mutating anything
	DryRun bool
}

// Apply executes the plan and returns a summary of what was done.
func (a *Applier) Apply(ctx context.Context, p *Plan) (*Result, error) {
	log := a.Log
	if log == nil {
		log = logger.NewNop()
	}

	result := &Result{PlanID: p.ID, DryRun: a.DryRun}

	if a.DryRun {
		for _, op := range p.Ops {
			log.LogInfo("dry-run: would " + op.String())
		}
		return result, nil
	}

	stagedOldSubtree := false
	for _, op := range p.Ops {
		switch op.Kind {
		case OpInjectDocstring:
			if err := a.injectDocstring(p, op, result, log); err != nil {
				return result, err
			}

		case OpMkdir:
			if err := os.MkdirAll(a.abs(p, op.Path), 0755); err != nil {
				return result, fmt.Errorf("failed to create directory %s: %w", op.Path, err)
			}
			result.DirsCreated++
			log.LogInfo("created directory " + op.Path)

		case OpMove:
			// Stage the docstring edits before the first move so git
			// records them as a modification prior to the rename
			if !stagedOldSubtree && a.Git != nil {
				if err := a.Git.Stage(ctx, p.OldRoot); err != nil {
					return result, err
				}
				stagedOldSubtree = true
			}
			moved, err := a.moveFile(ctx, p, op.Path, op.Dest, log)
			if err != nil {
				return result, err
			}
			if moved {
				result.FilesMoved++
			} else {
				result.Skipped++
			}

		case OpRename:
			moved, err := a.moveFile(ctx, p, op.Path, op.Dest, log)
			if err != nil {
				return result, err
			}
			if moved {
				result.FilesRenamed++
			} else {
				result.Skipped++
			}

		case OpRewrite:
			if err := a.rewrite(p, op, result, log); err != nil {
				return result, err
			}
		}
	}

	if p.HasMigration {
		oldRootAbs := a.abs(p, p.OldRoot)
		if dirExists(oldRootAbs) {
			if err := fileutil.RemoveEmptyDirs(oldRootAbs); err != nil {
				return result, err
			}
		}
	}

	if a.Git != nil {
		// The run lock is still held (and on disk) at this point; keep it
		// out of the staged diff
		if err := a.Git.StageAll(ctx, filelock.LockFileName); err != nil {
			return result, err
		}
		result.Staged = true
	}

	return result, nil
}

// injectDocstring prepends the docstring line to the initializer, keeping
// any existing bytes.
func (a *Applier) injectDocstring(p *Plan, op Operation, result *Result, log logger.Logger) error {
	path := a.abs(p, op.Path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Skipped++
		log.LogWarn("skipped vanished file " + op.Path)
		return nil
	}
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", op.Path, err)
	}

	content := append([]byte(op.Text), existing...)
	if err := filelock.AtomicWrite(path, content, info.Mode().Perm()); err != nil {
		return err
	}
	log.LogInfo("injected docstring into " + op.Path)
	return nil
}

// moveFile relocates src to dst, preferring a history-preserving git mv
// for tracked files. Returns false when the source vanished between
// planning and apply.
func (a *Applier) moveFile(ctx context.Context, p *Plan, src, dst string, log logger.Logger) (bool, error) {
	if _, err := os.Stat(a.abs(p, src)); os.IsNotExist(err) {
		log.LogWarn("skipped vanished file " + src)
		return false, nil
	}

	if a.Git != nil && a.Git.IsTracked(ctx, src) {
		if err := a.Git.Move(ctx, src, dst); err != nil {
			return false, err
		}
		log.LogInfo(fmt.Sprintf("moved %s -> %s (git)", src, dst))
		return true, nil
	}

	if err := fileutil.MoveFile(a.abs(p, src), a.abs(p, dst)); err != nil {
		return false, err
	}
	log.LogInfo(fmt.Sprintf("moved %s -> %s", src, dst))
	return true, nil
}

// rewrite replaces every literal occurrence of the old identifier in the
// file's content. Binary files are skipped with a notice; files that no
// longer exist are skipped silently.
func (a *Applier) rewrite(p *Plan, op Operation, result *Result, log logger.Logger) error {
	path := a.abs(p, op.Path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Skipped++
		log.LogWarn("skipped vanished file " + op.Path)
		return nil
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", op.Path, err)
	}

	if fileutil.IsBinaryData(data) {
		result.Skipped++
		log.LogWarn("skipped binary file " + op.Path)
		return nil
	}

	replaced := bytes.ReplaceAll(data, []byte(p.OldName), []byte(p.NewName))
	if bytes.Equal(replaced, data) {
		return nil
	}

	if err := filelock.AtomicWrite(path, replaced, info.Mode().Perm()); err != nil {
		return err
	}
	result.FilesRewritten++
	log.LogInfo("updated contents of " + op.Path)
	return nil
}

func (a *Applier) abs(p *Plan, rel string) string {
	return filepath.Join(p.Root, rel)
}

package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tomas/rebrand/internal/config"
	"github.com/tomas/rebrand/internal/fileutil"
)

// Planner computes the full list of operations for a rename run without
// mutating anything.
type Planner struct {
	// Config supplies the old identifier, source directory, exclusion
	// list, and initializer thresholds
	Config *config.Config

	// Root is the absolute project root
	Root string

	// NewName is the identifier replacing Config.OldName
	NewName string

	// SelfPath is the resolved absolute path of the running executable.
	// The tool never renames or rewrites itself.
	SelfPath string
}

// Plan discovers every intended operation for the run.
//
// Returns ErrAlreadyRenamed when the old subtree is gone and the new one
// exists, and a ConflictError when both exist. Neither case mutates the
// tree; both are decided before any operation is planned.
func (p *Planner) Plan() (*Plan, error) {
	oldName := p.Config.OldName
	oldRoot := filepath.Join(p.Config.SourceDir, oldName)
	newRoot := filepath.Join(p.Config.SourceDir, p.NewName)

	oldExists := dirExists(filepath.Join(p.Root, oldRoot))
	newExists := dirExists(filepath.Join(p.Root, newRoot))

	if oldExists && newExists {
		return nil, &ConflictError{OldRoot: oldRoot, NewRoot: newRoot}
	}
	if !oldExists && newExists {
		return nil, ErrAlreadyRenamed
	}

	pl := &Plan{
		ID:           uuid.New().String(),
		Root:         p.Root,
		OldName:      oldName,
		NewName:      p.NewName,
		OldRoot:      oldRoot,
		NewRoot:      newRoot,
		HasMigration: oldExists,
	}

	// moved maps each pre-migration path to its post-migration location,
	// so the later passes plan against the tree as it will exist.
	moved := make(map[string]string)

	if oldExists {
		if err := p.planMigration(pl, moved); err != nil {
			return nil, err
		}
	}

	renamed, err := p.planRenames(pl, moved)
	if err != nil {
		return nil, err
	}

	if err := p.planRewrites(pl, moved, renamed); err != nil {
		return nil, err
	}

	return pl, nil
}

// planMigration plans the src/<old> -> src/<new> subtree move: docstring
// injection for near-empty initializers, destination directories, and one
// move per file.
func (p *Planner) planMigration(pl *Plan, moved map[string]string) error {
	absOldRoot := filepath.Join(p.Root, pl.OldRoot)

	var files []string
	err := filepath.WalkDir(absOldRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", pl.OldRoot, err)
	}
	sort.Strings(files)

	// Near-empty initializers get a provenance docstring before the move,
	// which also helps git recognize the move as a rename
	for _, f := range files {
		if filepath.Base(f) != p.Config.InitFileName {
			continue
		}
		info, err := os.Stat(filepath.Join(p.Root, f))
		if err != nil {
			return err
		}
		if info.Size() < p.Config.MinInitSize {
			pl.Ops = append(pl.Ops, Operation{
				Kind: OpInjectDocstring,
				Path: f,
				Text: p.docstring(f),
			})
		}
	}

	// Destination directories, parents before children
	dirSet := map[string]bool{pl.NewRoot: true}
	dests := make(map[string]string, len(files))
	for _, f := range files {
		relToOld, err := filepath.Rel(pl.OldRoot, f)
		if err != nil {
			return err
		}
		dest := filepath.Join(pl.NewRoot, relToOld)
		dests[f] = dest
		if dir := filepath.Dir(dest); dir != "." {
			dirSet[dir] = true
		}
	}
	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		pl.Ops = append(pl.Ops, Operation{Kind: OpMkdir, Path: dir})
	}

	for _, f := range files {
		pl.Ops = append(pl.Ops, Operation{Kind: OpMove, Path: f, Dest: dests[f]})
		moved[f] = dests[f]
	}

	return nil
}

// planRenames plans base-name substitutions for every file whose name
// contains the old identifier, against post-migration locations.
func (p *Planner) planRenames(pl *Plan, moved map[string]string) (map[string]string, error) {
	result, err := fileutil.Scan(p.Root, fileutil.ScanOptions{
		NameContains: pl.OldName,
		ExcludeDirs:  p.Config.ExcludeDirs,
		SkipPaths:    p.selfSkips(),
	})
	if err != nil {
		return nil, fmt.Errorf("filename scan failed: %w", err)
	}

	renamed := make(map[string]string)
	for _, f := range result.Files {
		if p.isSelf(f) {
			continue
		}
		cur := f
		if dest, ok := moved[f]; ok {
			cur = dest
		}
		base := filepath.Base(cur)
		newBase := strings.ReplaceAll(base, pl.OldName, pl.NewName)
		if newBase == base {
			continue
		}
		dest := filepath.Join(filepath.Dir(cur), newBase)
		pl.Ops = append(pl.Ops, Operation{Kind: OpRename, Path: cur, Dest: dest})
		renamed[cur] = dest
	}
	return renamed, nil
}

// planRewrites plans a content substitution for every file containing the
// old identifier as a literal byte substring. Text/binary classification
// happens at apply time, after the moves have settled.
func (p *Planner) planRewrites(pl *Plan, moved, renamed map[string]string) error {
	result, err := fileutil.Scan(p.Root, fileutil.ScanOptions{
		ContentContains: pl.OldName,
		ExcludeDirs:     p.Config.ExcludeDirs,
		SkipPaths:       p.selfSkips(),
	})
	if err != nil {
		return fmt.Errorf("content scan failed: %w", err)
	}

	for _, f := range result.Files {
		if p.isSelf(f) {
			continue
		}
		cur := f
		if dest, ok := moved[f]; ok {
			cur = dest
		}
		if dest, ok := renamed[cur]; ok {
			cur = dest
		}
		pl.Ops = append(pl.Ops, Operation{Kind: OpRewrite, Path: cur})
	}
	return nil
}

// docstring builds the one-line module docstring for an initializer at
// rel, naming its dotted import path under the new identifier.
// src/widget/domain/__init__.py becomes "widget.domain.__init__".
func (p *Planner) docstring(rel string) string {
	relToSrc, err := filepath.Rel(p.Config.SourceDir, rel)
	if err != nil {
		relToSrc = rel
	}
	stem := strings.TrimSuffix(relToSrc, filepath.Ext(relToSrc))
	dotted := strings.ReplaceAll(filepath.ToSlash(stem), "/", ".")
	dotted = strings.ReplaceAll(dotted, p.Config.OldName, p.NewName)
	return fmt.Sprintf("\"\"\"%s module.\"\"\"\n", dotted)
}

// selfSkips returns the scanner skip set for the running tool's own path
// when it lives inside the tree being renamed.
func (p *Planner) selfSkips() map[string]bool {
	if p.SelfPath == "" {
		return nil
	}
	rel, err := filepath.Rel(p.Root, p.SelfPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	return map[string]bool{rel: true}
}

// isSelf reports whether rel is the running tool itself, matched by
// resolved absolute path or by base name.
func (p *Planner) isSelf(rel string) bool {
	if p.SelfPath == "" {
		return false
	}
	if filepath.Base(rel) == filepath.Base(p.SelfPath) {
		return true
	}
	abs, err := filepath.Abs(filepath.Join(p.Root, rel))
	if err != nil {
		return false
	}
	return abs == p.SelfPath
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

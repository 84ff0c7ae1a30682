// Package plan implements the two-phase rename engine: a Planner that
// discovers every intended operation without touching the tree, and an
// Applier that executes a computed plan sequentially.
package plan

import (
	"errors"
	"fmt"
)

// OpKind identifies the type of a planned operation.
type OpKind string

const (
	// OpInjectDocstring prepends a provenance docstring to a near-empty
	// module initializer before its subtree is moved
	OpInjectDocstring OpKind = "inject-docstring"
	// OpMkdir creates a destination directory
	OpMkdir OpKind = "mkdir"
	// OpMove relocates a file during the package subtree migration
	OpMove OpKind = "move"
	// OpRename renames a file whose base name contains the old identifier
	OpRename OpKind = "rename"
	// OpRewrite substitutes the old identifier in a file's content
	OpRewrite OpKind = "rewrite"
)

// Operation is a single intended mutation. All paths are relative to the
// plan's root.
type Operation struct {
	Kind OpKind
	// Path is the source path the operation applies to
	Path string
	// Dest is the destination path for move and rename operations
	Dest string
	// Text carries the docstring line for inject-docstring operations
	Text string
}

// String renders the operation the way the dry-run printer shows it.
func (op Operation) String() string {
	switch op.Kind {
	case OpInjectDocstring:
		return fmt.Sprintf("inject docstring into %s", op.Path)
	case OpMkdir:
		return fmt.Sprintf("create directory %s", op.Path)
	case OpMove:
		return fmt.Sprintf("move %s -> %s", op.Path, op.Dest)
	case OpRename:
		return fmt.Sprintf("rename %s -> %s", op.Path, op.Dest)
	case OpRewrite:
		return fmt.Sprintf("rewrite %s", op.Path)
	}
	return fmt.Sprintf("%s %s", op.Kind, op.Path)
}

// Plan is the full ordered list of operations for one rename run.
type Plan struct {
	// ID uniquely identifies the run in logs and reports
	ID string
	// Root is the absolute project root the relative paths hang off
	Root string
	// OldName and NewName are the identifiers being substituted
	OldName string
	NewName string
	// OldRoot and NewRoot are the package subtree roots (relative),
	// e.g. src/project_name and src/widget
	OldRoot string
	NewRoot string
	// HasMigration is true when the old subtree exists and will be moved
	HasMigration bool
	// Ops holds the operations in execution order
	Ops []Operation
}

// Counts returns per-kind operation counts, used by the report.
func (p *Plan) Counts() map[OpKind]int {
	counts := make(map[OpKind]int)
	for _, op := range p.Ops {
		counts[op.Kind]++
	}
	return counts
}

// Result summarizes an apply run.
type Result struct {
	PlanID         string
	DirsCreated    int
	FilesMoved     int
	FilesRenamed   int
	FilesRewritten int
	Skipped        int
	Staged         bool
	DryRun         bool
}

// ErrAlreadyRenamed reports that the old subtree is gone and the new one
// already exists: the project has been renamed before. Callers treat this
// as a successful no-op, not a failure.
var ErrAlreadyRenamed = errors.New("project already renamed")

// ConflictError reports that both the old and the new package subtrees
// exist. Proceeding would merge the two unpredictably, so the run fails
// fast instead.
type ConflictError struct {
	OldRoot string
	NewRoot string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("both %s and %s exist: resolve the conflict manually before renaming", e.OldRoot, e.NewRoot)
}

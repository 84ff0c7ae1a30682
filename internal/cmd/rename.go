package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomas/rebrand/internal/config"
	"github.com/tomas/rebrand/internal/filelock"
	"github.com/tomas/rebrand/internal/identifier"
	"github.com/tomas/rebrand/internal/logger"
	"github.com/tomas/rebrand/internal/plan"
	"github.com/tomas/rebrand/internal/vcs"
)

// renameOptions carries the flag values and environment for one run.
type renameOptions struct {
	// Root is the project root; empty means the current working directory
	Root string

	// ConfigPath overrides the default .rebrand.yaml location
	ConfigPath string

	// OldName, SourceDir, and LogLevel override the config when non-empty
	OldName   string
	SourceDir string
	LogLevel  string

	// DryRun prints the plan without mutating the tree
	DryRun bool
}

// optionsFromFlags reads the command's flag values into renameOptions.
func optionsFromFlags(cmd *cobra.Command) (renameOptions, error) {
	var opts renameOptions
	var err error

	if opts.OldName, err = cmd.Flags().GetString("old"); err != nil {
		return opts, err
	}
	if opts.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
		return opts, err
	}
	if opts.SourceDir, err = cmd.Flags().GetString("src"); err != nil {
		return opts, err
	}
	if opts.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return opts, err
	}
	if opts.LogLevel, err = cmd.Flags().GetString("log-level"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runRename executes the full rename: validate, guard, detect version
// control, plan, and apply.
func runRename(ctx context.Context, newName string, opts renameOptions, out io.Writer) error {
	if err := identifier.Validate(newName); err != nil {
		return fmt.Errorf("%w\nusage: rebrand <new_identifier> (e.g. rebrand widget)", err)
	}

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}

	cfg, err := loadConfig(root, opts)
	if err != nil {
		return err
	}

	if newName == cfg.OldName {
		return fmt.Errorf("new identifier %q is the same as the old one", newName)
	}

	log := logger.NewConsole(out, cfg.LogLevel)

	planner := &plan.Planner{
		Config:   cfg,
		Root:     root,
		NewName:  newName,
		SelfPath: selfPath(),
	}

	pl, err := planner.Plan()
	if errors.Is(err, plan.ErrAlreadyRenamed) {
		log.LogWarn(fmt.Sprintf("%s not found but %s exists: project appears already renamed, nothing to do",
			filepath.Join(cfg.SourceDir, cfg.OldName), filepath.Join(cfg.SourceDir, newName)))
		return nil
	}
	if err != nil {
		return err
	}

	applier := &plan.Applier{Log: log, DryRun: cfg.DryRun || opts.DryRun}

	git := vcs.New(root)
	if git.IsWorkTree(ctx) {
		applier.Git = git
	} else {
		log.LogWarn("no version control detected; using plain filesystem moves")
	}

	if !applier.DryRun {
		lock, err := filelock.Acquire(root)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	result, err := applier.Apply(ctx, pl)
	if err != nil {
		return fmt.Errorf("rename aborted: %w", err)
	}

	printReport(out, pl, result)
	return nil
}

// loadConfig loads the YAML config and layers flag overrides on top.
func loadConfig(root string, opts renameOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = filepath.Join(root, config.DefaultConfigPath)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if opts.OldName != "" {
		cfg.OldName = opts.OldName
	}
	if opts.SourceDir != "" {
		cfg.SourceDir = opts.SourceDir
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.DryRun {
		cfg.DryRun = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selfPath resolves the running executable so the planner can exclude it.
func selfPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}

// printReport writes the run summary and suggested next manual steps.
func printReport(out io.Writer, pl *plan.Plan, result *plan.Result) {
	if result.DryRun {
		counts := pl.Counts()
		fmt.Fprintf(out, "\nDry run %s: %d operation(s) planned, nothing changed\n", pl.ID, len(pl.Ops))
		fmt.Fprintf(out, "  Moves: %d  Renames: %d  Rewrites: %d\n",
			counts[plan.OpMove], counts[plan.OpRename], counts[plan.OpRewrite])
		return
	}

	fmt.Fprintf(out, "\nRename Summary (run %s):\n", result.PlanID)
	fmt.Fprintf(out, "  %s -> %s\n", pl.OldName, pl.NewName)
	fmt.Fprintf(out, "  Directories created: %d\n", result.DirsCreated)
	fmt.Fprintf(out, "  Files moved: %d\n", result.FilesMoved)
	fmt.Fprintf(out, "  Files renamed: %d\n", result.FilesRenamed)
	fmt.Fprintf(out, "  Files rewritten: %d\n", result.FilesRewritten)
	if result.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped: %d\n", result.Skipped)
	}

	fmt.Fprintf(out, "\nNext steps:\n")
	if result.Staged {
		fmt.Fprintf(out, "  1. Review the staged changes: git diff --staged\n")
		fmt.Fprintf(out, "  2. Commit the rename: git commit -m \"Rename %s to %s\"\n", pl.OldName, pl.NewName)
	} else {
		fmt.Fprintf(out, "  1. Review the changes\n")
		fmt.Fprintf(out, "  2. Commit them to version control if applicable\n")
	}
	fmt.Fprintf(out, "  3. Run the project's test suite\n")
}

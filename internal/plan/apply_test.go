package plan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomas/rebrand/internal/filelock"
	"github.com/tomas/rebrand/internal/fileutil"
	"github.com/tomas/rebrand/internal/logger"
	"github.com/tomas/rebrand/internal/vcs"
)

func applyFixture(t *testing.T, root string) *Result {
	t.Helper()
	p, err := newPlanner(root).Plan()
	require.NoError(t, err)

	applier := &Applier{Log: logger.NewNop()}
	result, err := applier.Apply(context.Background(), p)
	require.NoError(t, err)
	return result
}

// treeContains reports whether any path or text file content under root
// still contains needle.
func treeContains(t *testing.T, root, needle string) bool {
	t.Helper()
	found := false
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if strings.Contains(d.Name(), needle) {
			found = true
		}
		if !d.IsDir() {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			if !fileutil.IsBinaryData(data) && bytes.Contains(data, []byte(needle)) {
				found = true
			}
		}
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestApply_FullRun(t *testing.T) {
	root := newFixture(t)
	result := applyFixture(t, root)

	assert.False(t, treeContains(t, root, "project_name"), "old identifier must not survive the run")

	// The migrated subtree holds every original file
	service, err := os.ReadFile(filepath.Join(root, "src", "widget", "use_cases", "service.py"))
	require.NoError(t, err)
	assert.Equal(t, "from widget.domain import X\n", string(service))

	settings, err := os.ReadFile(filepath.Join(root, "src", "widget", "widget_settings.py"))
	require.NoError(t, err)
	assert.Equal(t, "APP = \"widget\"\n", string(settings))

	readme, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# widget template\n", string(readme))

	// Near-empty initializers carry the injected docstring
	initFile, err := os.ReadFile(filepath.Join(root, "src", "widget", "domain", "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "\"\"\"widget.domain.__init__ module.\"\"\"\n", string(initFile))

	// Untouched files stay byte-identical
	unrelated, err := os.ReadFile(filepath.Join(root, "docs", "unrelated.md"))
	require.NoError(t, err)
	assert.Equal(t, "nothing to see\n", string(unrelated))

	// The old subtree is gone, empty directories included
	_, err = os.Stat(filepath.Join(root, "src", "project_name"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, 4, result.FilesMoved)
	assert.Greater(t, result.FilesRewritten, 0)
	assert.False(t, result.Staged, "no git in the fixture")
}

func TestApply_Idempotence(t *testing.T) {
	root := newFixture(t)
	applyFixture(t, root)

	// Snapshot the tree, then plan again
	before := snapshotTree(t, root)

	_, err := newPlanner(root).Plan()
	assert.ErrorIs(t, err, ErrAlreadyRenamed)

	assert.Equal(t, before, snapshotTree(t, root), "second run must not modify the filesystem")
}

func TestApply_DryRun(t *testing.T) {
	root := newFixture(t)
	before := snapshotTree(t, root)

	p, err := newPlanner(root).Plan()
	require.NoError(t, err)

	var buf bytes.Buffer
	applier := &Applier{Log: logger.NewConsole(&buf, "info"), DryRun: true}
	result, err := applier.Apply(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, before, snapshotTree(t, root), "dry-run must not modify the filesystem")
	assert.Contains(t, buf.String(), "would move")
	assert.Contains(t, buf.String(), "would rewrite")
}

func TestApply_BinaryFile(t *testing.T) {
	root := newFixture(t)
	binContent := []byte("project_name\x00\x01\x02binary")
	writeTree(t, root, "assets/project_name_logo.bin", binContent)

	applyFixture(t, root)

	// Renamed by name, content untouched
	data, err := os.ReadFile(filepath.Join(root, "assets", "widget_logo.bin"))
	require.NoError(t, err)
	assert.Equal(t, binContent, data, "binary content must be byte-identical")
}

func TestApply_VanishedFileSkipped(t *testing.T) {
	root := newFixture(t)

	p, err := newPlanner(root).Plan()
	require.NoError(t, err)

	// A file disappears between planning and apply
	require.NoError(t, os.Remove(filepath.Join(root, "scripts", "run_project_name.sh")))

	applier := &Applier{Log: logger.NewNop()}
	result, err := applier.Apply(context.Background(), p)
	require.NoError(t, err, "a vanished file is not fatal to the run")
	assert.Greater(t, result.Skipped, 0)
}

func TestApply_EmptyPlan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "README.md", []byte("no placeholders here\n"))

	p, err := newPlanner(root).Plan()
	require.NoError(t, err)
	assert.Empty(t, p.Ops)

	result, err := (&Applier{}).Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Zero(t, result.FilesMoved)
	assert.Zero(t, result.FilesRewritten)
}

// renamingRunner fakes the git binary: mv performs a real rename so the
// applier's git path exercises the same filesystem semantics, and every
// command is recorded for assertions.
type renamingRunner struct {
	root     string
	commands []string
	tracked  map[string]bool
}

func (r *renamingRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.commands = append(r.commands, name+" "+strings.Join(args, " "))
	switch {
	case len(args) > 0 && args[0] == "rev-parse":
		return "true\n", nil
	case len(args) > 1 && args[0] == "ls-files":
		path := args[len(args)-1]
		if r.tracked[path] {
			return path + "\n", nil
		}
		return "", os.ErrNotExist
	case len(args) > 0 && args[0] == "mv":
		src, dst := args[len(args)-2], args[len(args)-1]
		if err := os.MkdirAll(filepath.Dir(filepath.Join(r.root, dst)), 0755); err != nil {
			return "", err
		}
		return "", os.Rename(filepath.Join(r.root, src), filepath.Join(r.root, dst))
	}
	return "", nil
}

func TestApply_GitAwareMoves(t *testing.T) {
	root := newFixture(t)

	p, err := newPlanner(root).Plan()
	require.NoError(t, err)

	runner := &renamingRunner{
		root: root,
		tracked: map[string]bool{
			filepath.Join("src", "project_name", "use_cases", "service.py"): true,
		},
	}
	applier := &Applier{
		Git: vcs.NewWithRunner(runner),
		Log: logger.NewNop(),
	}

	result, err := applier.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, result.Staged)

	joined := strings.Join(runner.commands, "\n")

	// Docstring edits staged before the first move
	assert.Contains(t, joined, "git add -- "+filepath.Join("src", "project_name"))
	// The run lock never enters the staged diff
	assert.Contains(t, joined, ":!"+filelock.LockFileName)
	// Tracked file moved with git mv
	assert.Contains(t, joined, "git mv -- "+filepath.Join("src", "project_name", "use_cases", "service.py"))
	// Everything staged at the end
	assert.Contains(t, joined, "git add -A")

	// Untracked files still arrived via the plain move fallback
	_, err = os.Stat(filepath.Join(root, "src", "widget", "domain", "__init__.py"))
	assert.NoError(t, err)
	// And so did the tracked one, through the fake git mv
	_, err = os.Stat(filepath.Join(root, "src", "widget", "use_cases", "service.py"))
	assert.NoError(t, err)
}

// snapshotTree captures every path and file content under root.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	snapshot := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		if d.IsDir() {
			snapshot[rel] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		snapshot[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return snapshot
}

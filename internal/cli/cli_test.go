package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/gscandir/internal/ops"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "pkg"), 0o755))
	for _, p := range []string{".env", "README", "src/main.go", "src/pkg/util.go", "src/pkg/notes.tmp"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(p)), []byte(p), 0o644))
	}
	return root
}

func execute(t *testing.T, configYAML string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))
	}

	cmd := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color", "--config", cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCount_PrintsStatistics(t *testing.T) {
	root := makeTree(t)

	out, _, err := execute(t, "", "count", "--no-progress", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Dirs:     2")
	assert.Contains(t, out, "Files:    5")
	assert.NotContains(t, out, "Usage:")
	assert.NotContains(t, out, "interrupted")
}

func TestCount_ExtMetadataShowsUsage(t *testing.T) {
	root := makeTree(t)

	out, _, err := execute(t, "", "count", "--no-progress", "-m", "ext", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Size:")
	assert.Contains(t, out, "Usage:")
}

func TestConfigFile_AppliesDefaults(t *testing.T) {
	root := makeTree(t)

	out, _, err := execute(t, "skip_hidden: true\nsorted: true\nfile_exclude: ['*.tmp']\n", "list", root)
	require.NoError(t, err)
	assert.NotContains(t, out, ".env")
	assert.NotContains(t, out, "notes.tmp")
	assert.Contains(t, out, filepath.Join("src", "pkg", "util.go"))
	assert.Contains(t, out, "5 entries")
	assert.Contains(t, out, "files by type: code 2, other 1")
}

func TestFlags_OverrideConfigFile(t *testing.T) {
	root := makeTree(t)

	out, _, err := execute(t, "skip_hidden: true\n", "list", "--skip-hidden=false", "--max-depth", "1", root)
	require.NoError(t, err)
	assert.Contains(t, out, ".env")
	assert.NotContains(t, out, "main.go")
	assert.Contains(t, out, "3 entries")
}

func TestConfigFile_Invalid(t *testing.T) {
	_, _, err := execute(t, "log_level: loud\n", "count", "--no-progress", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestVerbose_LogsToStderr(t *testing.T) {
	_, stderr, err := execute(t, "", "-v", "count", "--no-progress", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stderr, "configuration loaded")
}

func TestWalk_ExportAndShow(t *testing.T) {
	root := makeTree(t)
	exportPath := filepath.Join(t.TempDir(), "toc.json")

	out, stderr, err := execute(t, "", "walk", "--sorted", "-o", exportPath, root)
	require.NoError(t, err)
	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "3 directories listed")
	assert.Contains(t, stderr, "exported to "+exportPath)

	rep, err := ops.ImportJSON(exportPath)
	require.NoError(t, err)
	assert.Equal(t, "toc", rep.Shape)
	require.Len(t, rep.Toc, 3)
	assert.Equal(t, ".", rep.Toc[0].Path)
	assert.Equal(t, []string{"src"}, rep.Toc[0].Dirs)

	out, _, err = execute(t, "", "show", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 directories listed")
	assert.Contains(t, out, "util.go")
}

func TestList_ExportKeepsErrorsSeparate(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := makeTree(t)
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	exportPath := filepath.Join(t.TempDir(), "list.json")

	out, _, err := execute(t, "", "list", "-o", exportPath, root)
	require.NoError(t, err)
	assert.Contains(t, out, "error")

	rep, err := ops.ImportJSON(exportPath)
	require.NoError(t, err)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "locked", rep.Errors[0].Path)
	assert.Len(t, rep.Entries, 8)
}

type blockingCtrl struct {
	scanner.Controller
	release chan struct{}
	once    sync.Once
	stops   int
}

func (b *blockingCtrl) Join() error {
	<-b.release
	return nil
}

func (b *blockingCtrl) Stop() error {
	b.stops++
	b.once.Do(func() { close(b.release) })
	return nil
}

func TestWaitOrStop(t *testing.T) {
	ctrl := &blockingCtrl{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.True(t, waitOrStop(ctx, ctrl))
	assert.Equal(t, 1, ctrl.stops)

	ctrl = &blockingCtrl{release: make(chan struct{})}
	close(ctrl.release)
	assert.False(t, waitOrStop(context.Background(), ctrl))
	assert.Zero(t, ctrl.stops)
}

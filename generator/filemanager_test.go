package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewtrack/modelgen/logger"
)

func TestWriteImmediate(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(logger.Nop())

	path := filepath.Join(dir, "models", "client.ts")
	require.NoError(t, fm.Write(path, []byte("export {};\n"), false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export {};\n", string(content))
	assert.Equal(t, 1, fm.Stats().Created)
	assert.Equal(t, 1, fm.Stats().Directories)
}

func TestDeferredWritesNothingUntilBatch(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(logger.Nop())

	path := filepath.Join(dir, "client.ts")
	require.NoError(t, fm.Write(path, []byte("a\n"), true))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "deferred write must not touch disk")
	assert.Equal(t, []string{path}, fm.Pending())

	_, err = fm.ProcessBatch()
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(content))
	assert.Empty(t, fm.Pending())
}

// Re-flushing identical content must produce zero writes: the file's mtime
// cannot move.
func TestProcessBatchIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.ts")

	fm := NewFileManager(logger.Nop())
	require.NoError(t, fm.Write(path, []byte("same\n"), true))
	_, err := fm.ProcessBatch()
	require.NoError(t, err)

	before, err := os.Stat(path)
	require.NoError(t, err)

	fm2 := NewFileManager(logger.Nop())
	require.NoError(t, fm2.Write(path, []byte("same\n"), true))
	stats, err := fm2.ProcessBatch()
	require.NoError(t, err)

	after, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Identical)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestProcessBatchWritesChangedOnly(t *testing.T) {
	dir := t.TempDir()
	same := filepath.Join(dir, "same.ts")
	changed := filepath.Join(dir, "changed.ts")
	require.NoError(t, os.WriteFile(same, []byte("same\n"), 0o644))
	require.NoError(t, os.WriteFile(changed, []byte("old\n"), 0o644))

	fm := NewFileManager(logger.Nop())
	require.NoError(t, fm.Write(same, []byte("same\n"), true))
	require.NoError(t, fm.Write(changed, []byte("new\n"), true))

	stats, err := fm.ProcessBatch()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Identical)

	content, err := os.ReadFile(changed)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(content))
}

func TestForceRewrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.ts")
	require.NoError(t, os.WriteFile(path, []byte("same\n"), 0o644))

	fm := NewFileManager(logger.Nop()).WithForce(true)
	require.NoError(t, fm.Write(path, []byte("same\n"), true))
	stats, err := fm.ProcessBatch()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 0, stats.Identical)
}

func TestDiscard(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(logger.Nop())

	path := filepath.Join(dir, "client.ts")
	require.NoError(t, fm.Write(path, []byte("a\n"), true))
	fm.Discard()

	stats, err := fm.ProcessBatch()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLazyDirectoryCreation(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(logger.Nop())

	a := filepath.Join(dir, "out", "a.ts")
	b := filepath.Join(dir, "out", "b.ts")
	require.NoError(t, fm.Write(a, []byte("a\n"), true))
	require.NoError(t, fm.Write(b, []byte("b\n"), true))

	stats, err := fm.ProcessBatch()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Directories, "directory created once, lazily")
}

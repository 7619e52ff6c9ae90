package sourcewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := NewWatcher(Config{Dir: dir, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

func nextBatch(t *testing.T, w *Watcher) Batch {
	t.Helper()
	select {
	case b, ok := <-w.Batches():
		require.True(t, ok, "batches channel closed")
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change batch")
	}
	return Batch{}
}

func noBatch(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case b := <-w.Batches():
		t.Fatalf("unexpected batch: %+v", b)
	case <-time.After(wait):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "classes.json"), "[]")
	w := startWatcher(t, dir)

	write(t, filepath.Join(dir, "classes.json"), `[{"id":"A"}]`)
	write(t, filepath.Join(dir, "properties.json"), "[]")
	write(t, filepath.Join(dir, "notes.txt"), "ignored")

	b := nextBatch(t, w)
	assert.Equal(t, []Change{
		{Path: "classes.json", Operation: OpModify},
		{Path: "properties.json", Operation: OpCreate},
	}, b.Changes)
}

func TestWatcher_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "classes.json"), "[]")
	w := startWatcher(t, dir)

	write(t, filepath.Join(dir, "classes.json"), "[]")
	noBatch(t, w, 300*time.Millisecond)
}

func TestWatcher_Delete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instances.json")
	write(t, path, "[]")
	w := startWatcher(t, dir)

	require.NoError(t, os.Remove(path))

	b := nextBatch(t, w)
	assert.Equal(t, []Change{{Path: "instances.json", Operation: OpDelete}}, b.Changes)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "hpc"), 0o755))
	// Give the watcher time to add the new directory.
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "hpc", "classes.json"), "[]")

	var paths []string
	require.Eventually(t, func() bool {
		select {
		case b := <-w.Batches():
			paths = append(paths, b.Paths()...)
		default:
		}
		return assert.ObjectsAreEqual([]string{"hpc/classes.json"}, paths)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(Config{Dir: dir})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Batches():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("batches channel not closed")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w, err := NewWatcher(Config{Dir: "/src"})
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.relevant("/src/classes.json"))
	assert.True(t, w.relevant("/src/UPPER.JSON"))
	assert.False(t, w.relevant("/src/.classes.json.swp"))
	assert.False(t, w.relevant("/src/classes.json~"))
	assert.False(t, w.relevant("/src/readme.md"))
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
}

func TestBatch_Paths(t *testing.T) {
	b := Batch{Changes: []Change{{Path: "a.json"}, {Path: "b/c.json"}}}
	assert.Equal(t, []string{"a.json", "b/c.json"}, b.Paths())
}

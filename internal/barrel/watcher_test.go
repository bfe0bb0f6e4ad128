package barrel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"barrelgen/internal/classify"
)

func TestWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	orch := New(afero.NewOsFs(), classify.DefaultRegistry(), zap.NewNop(), Options{Recursive: true})
	w, err := NewWatcher(dir, orch, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Start())
	require.NoError(t, w.Start(), "second Start is a no-op")
	w.Stop()
	w.Stop() // idempotent
}

func TestWatcher_AddTreeMissingRoot(t *testing.T) {
	orch := New(afero.NewOsFs(), classify.DefaultRegistry(), zap.NewNop(), Options{})
	w, err := NewWatcher(filepath.Join(t.TempDir(), "gone"), orch, zap.NewNop())
	require.NoError(t, err)

	err = w.Start()
	assert.Error(t, err, "watching a missing directory fails up front")
	w.Stop() // safe even though Start failed
}

// startWatcher runs an initial generation and starts a watcher with a short
// settle window so tests do not sit out the production debounce.
func startWatcher(t *testing.T, dir string) (*Watcher, *Orchestrator) {
	t.Helper()

	orch := New(afero.NewOsFs(), classify.DefaultRegistry(), zap.NewNop(), Options{})
	_, err := orch.Process(dir)
	require.NoError(t, err)

	w, err := NewWatcher(dir, orch, zap.NewNop())
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w, orch
}

func TestWatcher_RegeneratesOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const a = 1;\n"), 0644))

	startWatcher(t, dir)

	barrelPath := filepath.Join(dir, "index.ts")
	initial, err := os.ReadFile(barrelPath)
	require.NoError(t, err)
	assert.NotContains(t, string(initial), "./b")

	// A new recognized source must show up in the barrel after the change
	// settles past the debounce window.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ts"), []byte("export const b = 2;\n"), 0644))

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(barrelPath)
		require.NoError(t, err)
		if strings.Contains(string(data), "export { b } from './b';") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("barrel never regenerated, content: %q", string(data))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcher_IgnoresOwnOutputFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const a = 1;\n"), 0644))

	startWatcher(t, dir)

	// Overwrite the barrel by hand. If the watcher treated its own output
	// as a source change it would regenerate and replace the sentinel.
	barrelPath := filepath.Join(dir, "index.ts")
	sentinel := "// hand-edited\n"
	require.NoError(t, os.WriteFile(barrelPath, []byte(sentinel), 0644))

	time.Sleep(500 * time.Millisecond) // well past debounce + flush tick

	data, err := os.ReadFile(barrelPath)
	require.NoError(t, err)
	assert.Equal(t, sentinel, string(data), "a write to the output file alone must not trigger a run")
}

func TestWatcher_IgnoresUnrecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const a = 1;\n"), 0644))

	w, _ := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes\n"), 0644))

	time.Sleep(200 * time.Millisecond)
	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	assert.Zero(t, pending, "unrecognized files must not schedule a run")
}

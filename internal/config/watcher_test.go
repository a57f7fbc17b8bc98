package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_StartAndStop(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))

	cfg := w.GetLastConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, ":8081", cfg.Server.Address)

	require.NoError(t, w.Stop())
}

func TestWatcher_Start_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "logging:\n  level: loud\n")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	assert.Error(t, w.Start(context.Background()))
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	var reloads atomic.Int32
	updated := make(chan *ServiceConfig, 1)
	w, err := NewWatcher(path, func(cfg *ServiceConfig) {
		reloads.Add(1)
		select {
		case updated <- cfg:
		default:
		}
	}, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	changed := "server:\n  address: \":6060\"\n"
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o600))

	select {
	case cfg := <-updated:
		assert.Equal(t, ":6060", cfg.Server.Address)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestWatcher_BadReloadKeepsLastConfig(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	errCh := make(chan error, 1)
	w, err := NewWatcher(path, nil,
		WithDebounceDelay(20*time.Millisecond),
		WithErrorCallback(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600))

	select {
	case reloadErr := <-errCh:
		require.Error(t, reloadErr)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	// The last good configuration stays in effect.
	cfg := w.GetLastConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, ":8081", cfg.Server.Address)
}

func TestWatcher_ForceReload(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	var called atomic.Bool
	w, err := NewWatcher(path, func(*ServiceConfig) { called.Store(true) })
	require.NoError(t, err)

	require.NoError(t, w.ForceReload())
	assert.True(t, called.Load())
	assert.Equal(t, ":8081", w.GetLastConfig().Server.Address)
}

func TestWatcher_IsConfigWrite(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	assert.True(t, w.isConfigWrite(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, w.isConfigWrite(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, w.isConfigWrite(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, w.isConfigWrite(fsnotify.Event{
		Name: filepath.Join(filepath.Dir(path), "other.yaml"),
		Op:   fsnotify.Write,
	}))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	var reloads atomic.Int32
	w, err := NewWatcher(path, func(*ServiceConfig) { reloads.Add(1) },
		WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(0), reloads.Load())
}

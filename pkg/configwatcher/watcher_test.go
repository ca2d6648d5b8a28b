package configwatcher

import (
	"context"
	"edureach_backend/internal/config"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
server:
  mode: debug
offline:
  tick_interval: 500ms
  tick_step: %d
storage:
  type: local
  local_path: %s
`

func writeConfig(t *testing.T, path, dir string, step int) {
	t.Helper()
	content := []byte(fmt.Sprintf(baseConfig, step, dir))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, dir, 10)

	reloaded := make(chan *config.Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 注册
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, path, dir, 25)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 25, cfg.Offline.TickStep)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), func(*config.Config) {})
	assert.Error(t, err)
}

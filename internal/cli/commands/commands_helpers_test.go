package commands

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"HomeLedger/internal/cli/remotetest"
	"HomeLedger/internal/config"
)

const testUser = "u1"

// withStore поднимает фейковое хранилище и конфиг, указывающий на него;
// снимок и превью создаются в temp.
func withStore(t *testing.T) (*remotetest.Store, *config.Config) {
	t.Helper()
	store := remotetest.New()
	ts := store.Start()
	t.Cleanup(ts.Close)
	dir := t.TempDir()
	cfg := &config.Config{
		ServerURL:      ts.URL,
		UserID:         testUser,
		CacheDSN:       filepath.Join(dir, "cache.sqlite"),
		PreviewDir:     filepath.Join(dir, "previews"),
		RequestTimeout: 5 * time.Second,
	}
	return store, cfg
}

// перехват вывода на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

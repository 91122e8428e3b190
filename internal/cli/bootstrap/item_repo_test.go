package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/remotetest"
	"HomeLedger/internal/config"

	"go.uber.org/zap"
)

func TestOpenSnapshotRepo_SuccessAndCleanup(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "cache.sqlite")
	r, done, err := OpenSnapshotRepo(dsn)
	if err != nil {
		t.Fatalf("OpenSnapshotRepo: %v", err)
	}
	// репозиторий должен быть рабочим - сохраним пустой снимок
	if err := r.SaveItems(context.Background(), "u1", nil); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}
	if err := done(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestOpenSnapshotRepo_Error(t *testing.T) {
	if _, _, err := OpenSnapshotRepo(""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL:      serverURL,
		UserID:         "u1",
		CacheDSN:       filepath.Join(t.TempDir(), "cache.sqlite"),
		PreviewDir:     t.TempDir(),
		RequestTimeout: 5 * time.Second,
	}
}

func TestOpen_WiresStoresAndSnapshots(t *testing.T) {
	st := remotetest.New()
	st.PutItem(model.Item{Name: "Rice", Type: "Food", OwnerID: "u1"})
	srv := st.Start()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	env, err := Open(cfg, nil, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p, err := env.RequirePrincipal()
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if _, err := env.Ledger.List(context.Background(), p); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// второй запуск без сети читает снимок
	cfg.ServerURL = "http://127.0.0.1:1"
	env2, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open offline: %v", err)
	}
	defer env2.Close()
	items, err := env2.Ledger.LoadSnapshot(context.Background(), p)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Rice" {
		t.Fatalf("unexpected snapshot: %+v", items)
	}
}

func TestOpen_WithoutUser(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.UserID = ""
	env, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()
	if _, err := env.RequirePrincipal(); err != principal.ErrMissing {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestOpen_BadSnapshotDSN_StillWorks(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.CacheDSN = ""
	env, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if env.Ledger == nil || env.Feed == nil {
		t.Fatalf("stores must be wired")
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

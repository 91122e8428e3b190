package service

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/remotetest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func testEngine() *Engine {
	return &Engine{Now: func() time.Time { return fixedNow }}
}

func alice(t *testing.T) principal.Principal {
	t.Helper()
	p, err := principal.New("u1", "Alice")
	require.NoError(t, err)
	return p
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

// newRemote поднимает fake-хранилище и клиент к нему.
func newRemote(t *testing.T) (*remotetest.Store, *api.Client) {
	t.Helper()
	st := remotetest.New()
	st.Now = func() time.Time { return fixedNow }
	srv := st.Start()
	t.Cleanup(srv.Close)
	return st, api.NewClient(srv.URL, 5*time.Second)
}

func newTestLedger(t *testing.T) (*Ledger, *remotetest.Store, *recorder) {
	t.Helper()
	st, c := newRemote(t)
	rec := &recorder{}
	return NewLedger(c, testEngine(), rec, zap.NewNop().Sugar()), st, rec
}

// localFile создаёт файл во временном каталоге.
func localFile(t *testing.T, name, mediaType string, data []byte) model.LocalFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return model.LocalFile{Path: p, Name: name, MediaType: mediaType}
}

func strPtr(s string) *string { return &s }

// recorder запоминает уведомления для проверок.
type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

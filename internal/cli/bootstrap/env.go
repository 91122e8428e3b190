// Package bootstrap собирает из конфига хранилища, нужные команде.
package bootstrap

import (
	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/preview"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/service"
	"HomeLedger/internal/config"
	"HomeLedger/internal/middleware"

	"go.uber.org/zap"
)

// Env - собранные зависимости одного запуска команды.
type Env struct {
	Principal principal.Principal
	Client    *api.Client
	Ledger    service.ItemService
	Feed      *service.Feed
	Previews  *preview.ThumbnailFactory
	Log       *zap.SugaredLogger
	// Snapshots - открыт ли локальный снимок.
	Snapshots bool

	closers []func() error
}

// Open собирает api-клиент, репозиторий снимков и сервисы.
// Если БД снимков не открылась, отключаются только офлайн-снимки.
func Open(cfg *config.Config, n service.Notifier, log *zap.SugaredLogger) (*Env, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	client.HTTP.Transport = middleware.NewLoggingTransport(nil, log)

	e := &Env{
		Client:   client,
		Previews: preview.NewThumbnailFactory(cfg.PreviewDir),
		Log:      log,
	}
	// пользователь необязателен для команд ленты
	if p, err := principal.New(cfg.UserID, cfg.UserName); err == nil {
		e.Principal = p
	}

	ledger := service.NewLedger(client, service.NewEngine(), n, log)
	e.Ledger = ledger
	e.Feed = service.NewFeed(client, e.Previews, n, log)

	snap, done, err := OpenSnapshotRepo(cfg.CacheDSN)
	if err != nil {
		log.Warnw("local snapshots disabled", "dsn", cfg.CacheDSN, "error", err)
		return e, nil
	}
	e.closers = append(e.closers, done)
	e.Snapshots = true
	ledger.WithSnapshots(snap)
	e.Feed.WithSnapshots(snap)
	return e, nil
}

// RequirePrincipal возвращает пользователя или principal.ErrMissing.
func (e *Env) RequirePrincipal() (principal.Principal, error) {
	if !e.Principal.Valid() {
		return principal.Principal{}, principal.ErrMissing
	}
	return e.Principal, nil
}

// Close закрывает БД снимков.
func (e *Env) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

package bootstrap

import (
	"fmt"

	reposqlite "HomeLedger/internal/cli/repo/sqlite"
)

// OpenSnapshotRepo открывает БД локальных снимков по dsn (файл sqlite или postgres),
// выполняет миграции и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenSnapshotRepo(dsn string) (*reposqlite.SnapshotRepository, func() error, error) {
	r, err := reposqlite.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}

package repo

import (
	"context"
	"errors"

	"HomeLedger/internal/cli/model"
)

// ErrNoSnapshot возвращается, если локальный снимок ещё ни разу не сохранялся.
var ErrNoSnapshot = errors.New("no local snapshot")

// ItemRepository определяет порт локального снимка items пользователя.
// Снимок используется только для офлайн-поиска и фильтрации; источник истины - удалённое хранилище.
type ItemRepository interface {
	// SaveItems целиком заменяет снимок владельца.
	SaveItems(ctx context.Context, ownerID string, items []model.Item) error

	// ListItems возвращает снимок в порядке сохранения.
	ListItems(ctx context.Context, ownerID string) ([]model.Item, error)
}

// PostRepository - порт локального снимка ленты.
type PostRepository interface {
	SavePosts(ctx context.Context, posts []model.Post) error
	ListPosts(ctx context.Context) ([]model.Post, error)
}

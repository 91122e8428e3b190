package service

import (
	"context"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/principal"
)

// ItemStore - порт удалённого хранилища items; *api.Client его реализует.
type ItemStore interface {
	ItemWriter
	ListItems(ctx context.Context, ownerID string) ([]model.Item, error)
	CreateItem(ctx context.Context, it model.Item) (model.Item, error)
}

// ItemService описывает юзкейс-уровень работы с учётом запасов для CLI.
type ItemService interface {
	// List загружает все items пользователя и сбрасывает активный вид.
	List(ctx context.Context, p principal.Principal) ([]model.Item, error)

	// LoadSnapshot наполняет кэш из последнего локального снимка.
	LoadSnapshot(ctx context.Context, p principal.Principal) ([]model.Item, error)

	// Create отправляет черновик и добавляет вернувшуюся запись в кэш.
	Create(ctx context.Context, p principal.Principal, d ItemDraft) (model.Item, error)

	// Apply выполняет транзакцию и пересинхронизирует кэш.
	Apply(ctx context.Context, p principal.Principal, tx StockTransaction) error

	// Search и FilterByType пересчитывают активный вид по полному кэшу.
	Search(query string) []model.Item
	FilterByType(t string) []model.Item

	View() []model.Item
	Types() []string
	Find(id string) (model.Item, bool)
	FindByCode(code string) (model.Item, bool)
}

var _ ItemService = (*Ledger)(nil)

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/repo"
	"HomeLedger/internal/cli/validate"

	"go.uber.org/zap"
)

// AllTypes - значение FilterByType для всех items.
const AllTypes = "all"

// Ledger - клиентский кэш items одного пользователя и активный вид.
// Каждая успешная перезагрузка заменяет кэш целиком; побеждает последний ответ.
type Ledger struct {
	store  ItemStore
	engine *Engine
	notify Notifier
	log    *zap.SugaredLogger
	snap   repo.ItemRepository

	mu    sync.RWMutex
	items []model.Item
	view  []model.Item
	types []string
}

// NewLedger создаёт учёт поверх хранилища. Nil notifier и логгер заменяются заглушками.
func NewLedger(store ItemStore, engine *Engine, n Notifier, log *zap.SugaredLogger) *Ledger {
	if engine == nil {
		engine = NewEngine()
	}
	if n == nil {
		n = Discard
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Ledger{store: store, engine: engine, notify: n, log: log}
}

// WithSnapshots включает сохранение каждого загруженного списка в r.
func (l *Ledger) WithSnapshots(r repo.ItemRepository) *Ledger {
	l.snap = r
	return l
}

// Engine возвращает движок транзакций.
func (l *Ledger) Engine() *Engine { return l.engine }

// distinctTypes возвращает типы в порядке первого появления.
func distinctTypes(items []model.Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Type == "" || seen[it.Type] {
			continue
		}
		seen[it.Type] = true
		out = append(out, it.Type)
	}
	return out
}

func clone(items []model.Item) []model.Item {
	return append([]model.Item(nil), items...)
}

// replace заменяет кэш и сбрасывает вид на все items.
func (l *Ledger) replace(items []model.Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = clone(items)
	l.view = clone(items)
	l.types = distinctTypes(items)
}

func (l *Ledger) saveSnapshot(ctx context.Context, owner string, items []model.Item) {
	if l.snap == nil {
		return
	}
	if err := l.snap.SaveItems(ctx, owner, items); err != nil {
		l.log.Warnw("failed to save item snapshot", "owner", owner, "error", err)
	}
}

// List загружает все items p, наполняет кэш и сбрасывает вид.
func (l *Ledger) List(ctx context.Context, p principal.Principal) ([]model.Item, error) {
	if !p.Valid() {
		return nil, principal.ErrMissing
	}
	items, err := l.store.ListItems(ctx, p.ID)
	if err != nil {
		l.log.Errorw("list items failed", "owner", p.ID, "error", err)
		l.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error loading items."})
		return nil, fmt.Errorf("list items: %w", err)
	}
	l.replace(items)
	l.saveSnapshot(ctx, p.ID, items)
	l.log.Debugw("items loaded", "owner", p.ID, "count", len(items))
	return clone(items), nil
}

// LoadSnapshot наполняет кэш из локального снимка без обращения к хранилищу.
func (l *Ledger) LoadSnapshot(ctx context.Context, p principal.Principal) ([]model.Item, error) {
	if !p.Valid() {
		return nil, principal.ErrMissing
	}
	if l.snap == nil {
		return nil, repo.ErrNoSnapshot
	}
	items, err := l.snap.ListItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	l.replace(items)
	return clone(items), nil
}

// Create проверяет черновик, отправляет полную запись владельца p и добавляет
// сохранённую запись в кэш.
func (l *Ledger) Create(ctx context.Context, p principal.Principal, d ItemDraft) (model.Item, error) {
	if !p.Valid() {
		return model.Item{}, principal.ErrMissing
	}
	if err := l.engine.ValidateDraft(d); err != nil {
		l.warnInvalid(err)
		return model.Item{}, err
	}
	rec := l.engine.Record(d, p.ID)
	created, err := l.store.CreateItem(ctx, rec)
	if err != nil {
		l.log.Errorw("create item failed", "code", rec.Code, "name", rec.Name, "error", err)
		l.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: fmt.Sprintf("Item Adding Failed !\nNew Item : %s", rec.Name)})
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}

	l.mu.Lock()
	l.items = append(l.items, created)
	l.view = append(l.view, created)
	l.types = distinctTypes(l.items)
	snapshot := clone(l.items)
	l.mu.Unlock()

	l.saveSnapshot(ctx, p.ID, snapshot)
	l.notify.Notify(Notice{Level: LevelSuccess, Title: "Success", Text: fmt.Sprintf("Item Added Successfully !\nNew Item : %s", created.Name)})
	return created, nil
}

func (l *Ledger) warnInvalid(err error) {
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		l.notify.Notify(Notice{Level: LevelWarning, Title: "Warning", Text: fe.Message})
		return
	}
	l.notify.Notify(Notice{Level: LevelWarning, Title: "Warning", Text: err.Error()})
}

// Apply выполняет tx в хранилище и при успехе перезагружает весь список.
// Транзакция по id, которого нет в кэше, возвращает ErrItemNotFound без побочных эффектов.
func (l *Ledger) Apply(ctx context.Context, p principal.Principal, tx StockTransaction) error {
	if !p.Valid() {
		return principal.ErrMissing
	}
	cur, ok := l.Find(tx.ItemID())
	if !ok {
		return fmt.Errorf("%s %q: %w", Action(tx), tx.ItemID(), ErrItemNotFound)
	}

	if err := l.engine.Execute(ctx, l.store, cur, tx); err != nil {
		var fe *validate.FieldError
		if errors.As(err, &fe) {
			l.warnInvalid(err)
			return err
		}
		l.log.Errorw("stock transaction failed", "action", Action(tx), "id", cur.ID, "code", cur.Code, "error", err)
		l.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: FailureText(tx, cur)})
		return fmt.Errorf("%s item %s: %w", Action(tx), cur.Code, err)
	}

	// после успешной записи кэш пересобирается целиком из хранилища
	items, err := l.store.ListItems(ctx, p.ID)
	if err != nil {
		l.log.Errorw("refetch after transaction failed", "action", Action(tx), "id", cur.ID, "error", err)
		l.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: FailureText(tx, cur)})
		return fmt.Errorf("refresh items after %s: %w", Action(tx), err)
	}
	l.replace(items)
	l.saveSnapshot(ctx, p.ID, items)
	l.log.Infow("stock transaction applied", "action", Action(tx), "id", cur.ID, "code", cur.Code)
	l.notify.Notify(Notice{Level: LevelSuccess, Title: "Success", Text: SuccessText(tx, cur)})
	return nil
}

// Search оставляет в виде items, любое поле которых содержит query
// (без учёта регистра). Заменяет фильтр по типу.
func (l *Ledger) Search(query string) []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := strings.TrimSpace(query)
	if q == "" {
		l.view = clone(l.items)
		return clone(l.view)
	}
	view := make([]model.Item, 0, len(l.items))
	for _, it := range l.items {
		if it.Matches(q) {
			view = append(view, it)
		}
	}
	l.view = view
	return clone(view)
}

// FilterByType оставляет в виде items типа t ("all" или "" - все).
// Заменяет поиск.
func (l *Ledger) FilterByType(t string) []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t == "" || strings.EqualFold(t, AllTypes) {
		l.view = clone(l.items)
		return clone(l.view)
	}
	view := make([]model.Item, 0, len(l.items))
	for _, it := range l.items {
		if it.Type == t {
			view = append(view, it)
		}
	}
	l.view = view
	return clone(view)
}

// View возвращает активный вид.
func (l *Ledger) View() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clone(l.view)
}

// Items возвращает весь кэш.
func (l *Ledger) Items() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clone(l.items)
}

// Types возвращает различные типы кэша в порядке первого появления.
func (l *Ledger) Types() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.types...)
}

// Find ищет item в кэше по id.
func (l *Ledger) Find(id string) (model.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

// FindByCode возвращает первый item с кодом code; коды не уникальны.
func (l *Ledger) FindByCode(code string) (model.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.Code == code {
			return it, true
		}
	}
	return model.Item{}, false
}

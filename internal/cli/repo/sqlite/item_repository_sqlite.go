package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/repo"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SnapshotRepository хранит локальные снимки items и ленты через gorm.
type SnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ repo.ItemRepository = (*SnapshotRepository)(nil)
	_ repo.PostRepository = (*SnapshotRepository)(nil)
)

// IsPostgresDSN сообщает, что dsn указывает на PostgreSQL, а не на файл sqlite.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// InitDB открывает БД снимков: PostgreSQL по DSN либо файл sqlite (modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var dial gorm.Dialector
	if IsPostgresDSN(dsn) {
		dial = postgres.Open(dsn)
	} else {
		if dsn == "" {
			return nil, errors.New("empty cache dsn")
		}
		if !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
				return nil, err
			}
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	return prepare(db, Migrate)
}

// prepare применяет миграции; при ошибке соединение закрывается.
func prepare(db *gorm.DB, migrate func(*gorm.DB) error) (*gorm.DB, error) {
	if err := migrate(db); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return db, nil
}

// Open инициализирует БД и возвращает репозиторий.
func Open(dsn string) (*SnapshotRepository, error) {
	db, err := InitDB(dsn)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New создаёт репозиторий поверх уже мигрированной БД.
func New(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Close закрывает соединение с БД.
func (r *SnapshotRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func itemScope(ownerID string) string { return "items:" + ownerID }

const postScope = "posts"

func (r *SnapshotRepository) touch(tx *gorm.DB, scope string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{"synced_at"}),
	}).Create(&snapshotMeta{Scope: scope, SyncedAt: r.now().UTC()}).Error
}

func (r *SnapshotRepository) hasScope(ctx context.Context, scope string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&snapshotMeta{}).Where("scope = ?", scope).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveItems целиком заменяет снимок items владельца.
func (r *SnapshotRepository) SaveItems(ctx context.Context, ownerID string, items []model.Item) error {
	rows := make([]itemRow, 0, len(items))
	for i, it := range items {
		rows = append(rows, toItemRow(ownerID, i, it))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&itemRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
		return r.touch(tx, itemScope(ownerID))
	})
}

// ListItems возвращает снимок владельца; repo.ErrNoSnapshot, если его нет.
func (r *SnapshotRepository) ListItems(ctx context.Context, ownerID string) ([]model.Item, error) {
	ok, err := r.hasScope(ctx, itemScope(ownerID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repo.ErrNoSnapshot
	}
	var rows []itemRow
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		it, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// SavePosts целиком заменяет снимок ленты.
func (r *SnapshotRepository) SavePosts(ctx context.Context, posts []model.Post) error {
	rows := make([]postRow, 0, len(posts))
	for i, p := range posts {
		row, err := toPostRow(i, p)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&postRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
		return r.touch(tx, postScope)
	})
}

// ListPosts возвращает снимок ленты в сохранённом порядке.
func (r *SnapshotRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	ok, err := r.hasScope(ctx, postScope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repo.ErrNoSnapshot
	}
	var rows []postRow
	if err := r.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toItemRow(ownerID string, pos int, it model.Item) itemRow {
	row := itemRow{
		OwnerID:       ownerID,
		ID:            it.ID,
		Position:      pos,
		Code:          it.Code,
		Name:          it.Name,
		Desc:          it.Desc,
		Type:          it.Type,
		UOM:           string(it.UOM),
		Qty:           it.Qty,
		Price:         it.Price,
		ReorderLevel:  it.ReorderLevel,
		PurchasedDate: it.PurchasedDate.String(),
	}
	if it.ExpDate != nil {
		row.ExpDate = it.ExpDate.String()
	}
	return row
}

func (row itemRow) toModel() (model.Item, error) {
	it := model.Item{
		ID:           row.ID,
		Code:         row.Code,
		Name:         row.Name,
		Desc:         row.Desc,
		Type:         row.Type,
		UOM:          model.UOM(row.UOM),
		Qty:          row.Qty,
		Price:        row.Price,
		ReorderLevel: row.ReorderLevel,
		OwnerID:      row.OwnerID,
	}
	if row.PurchasedDate != "" {
		d, err := model.ParseDate(row.PurchasedDate)
		if err != nil {
			return model.Item{}, fmt.Errorf("item %s: %w", row.ID, err)
		}
		it.PurchasedDate = d
	}
	if row.ExpDate != "" {
		d, err := model.ParseDate(row.ExpDate)
		if err != nil {
			return model.Item{}, fmt.Errorf("item %s: %w", row.ID, err)
		}
		it.ExpDate = &d
	}
	return it, nil
}

func toPostRow(pos int, p model.Post) (postRow, error) {
	media, err := json.Marshal(p.MediaIDs)
	if err != nil {
		return postRow{}, err
	}
	row := postRow{
		ID:          p.ID,
		Position:    pos,
		UserID:      p.UserID,
		Description: p.Description,
		PostType:    int(p.Type()),
		MediaIDs:    string(media),
		PostedAt:    p.CreatedAt,
		EditedAt:    p.UpdatedAt,
	}
	switch v := p.Variant.(type) {
	case nil, *model.Update:
	case *model.Progress:
		res := make([]string, 0, len(v.Resources))
		for _, r := range v.Resources {
			res = append(res, r.String())
		}
		b, err := json.Marshal(res)
		if err != nil {
			return postRow{}, err
		}
		row.Title = v.Title
		row.Skill = model.JoinSkills(v.Skills)
		row.Resources = string(b)
		row.Challenges = v.Challenges
		row.NextGoal = v.NextGoal
	}
	return row, nil
}

func (row postRow) toModel() (model.Post, error) {
	p := model.Post{
		ID:          row.ID,
		UserID:      row.UserID,
		Description: row.Description,
		CreatedAt:   row.PostedAt,
		UpdatedAt:   row.EditedAt,
	}
	if row.MediaIDs != "" {
		if err := json.Unmarshal([]byte(row.MediaIDs), &p.MediaIDs); err != nil {
			return model.Post{}, fmt.Errorf("post %s media: %w", row.ID, err)
		}
	}
	switch model.PostType(row.PostType) {
	case model.PostTypeUpdate:
		p.Variant = &model.Update{}
	case model.PostTypeProgress:
		var res []string
		if row.Resources != "" {
			if err := json.Unmarshal([]byte(row.Resources), &res); err != nil {
				return model.Post{}, fmt.Errorf("post %s resources: %w", row.ID, err)
			}
		}
		prog := &model.Progress{
			Title:      row.Title,
			Skills:     model.SplitSkills(row.Skill),
			Challenges: row.Challenges,
			NextGoal:   row.NextGoal,
		}
		for _, s := range res {
			prog.Resources = append(prog.Resources, model.ParseResource(s))
		}
		p.Variant = prog
	default:
		return model.Post{}, fmt.Errorf("post %s: unknown postType %d", row.ID, row.PostType)
	}
	return p, nil
}

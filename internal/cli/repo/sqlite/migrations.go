package sqlite

import (
	"time"

	"gorm.io/gorm"
)

// itemRow - строка снимка items.
type itemRow struct {
	OwnerID       string `gorm:"primaryKey;size:64"`
	ID            string `gorm:"primaryKey;size:64"`
	Position      int
	Code          string `gorm:"size:16;index"`
	Name          string
	Desc          string
	Type          string
	UOM           string `gorm:"size:8"`
	Qty           float64
	Price         float64
	ReorderLevel  float64
	ExpDate       string `gorm:"size:10"`
	PurchasedDate string `gorm:"size:10"`
}

func (itemRow) TableName() string { return "item_snapshots" }

// postRow - строка снимка ленты. Списки хранятся JSON-строками.
type postRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Position    int
	UserID      string `gorm:"size:64;index"`
	Description string
	PostType    int
	Title       string
	Skill       string
	Resources   string
	Challenges  string
	NextGoal    string
	MediaIDs    string
	PostedAt    time.Time
	EditedAt    time.Time
}

func (postRow) TableName() string { return "post_snapshots" }

// snapshotMeta отмечает, что снимок области (items владельца или лента) был сохранён.
type snapshotMeta struct {
	Scope    string `gorm:"primaryKey;size:128"`
	SyncedAt time.Time
}

func (snapshotMeta) TableName() string { return "snapshot_meta" }

// Migrate гарантирует наличие необходимых таблиц/индексов.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&itemRow{}, &postRow{}, &snapshotMeta{})
}

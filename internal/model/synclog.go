package model

import "time"

// ==================== ApiSyncLog 同步审计 ====================

// 同步类型
const (
	SyncTypeOrder      = "order"
	SyncTypeRocket     = "rocket"
	SyncTypeSettlement = "settlement"
	SyncTypeStorefront = "storefront"
	SyncTypeInventory  = "inventory"
)

// ApiSyncLog 每次同步运行 × 渠道一行
type ApiSyncLog struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"size:36;index;not null"`

	Channel  string `gorm:"size:32;index"`
	SyncType string `gorm:"size:32;index"`

	WindowFrom *time.Time
	WindowTo   *time.Time

	InsertedCount int
	UpdatedCount  int
	SkippedCount  int
	ErrorCount    int

	// 错误摘要（截断存储，完整错误走日志）
	ErrorSummary string `gorm:"size:2000"`

	DurationMs int64

	// 审计
	CreatedAt time.Time
}

func (*ApiSyncLog) TableName() string {
	return "api_sync_logs"
}

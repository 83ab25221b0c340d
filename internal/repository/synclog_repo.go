package repository

import (
	"context"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ApiSyncLogRepository 同步审计仓库接口
type ApiSyncLogRepository interface {
	Create(ctx context.Context, log *model.ApiSyncLog) error
	ListRecent(ctx context.Context, syncType string, limit int) ([]model.ApiSyncLog, error)
}

type apiSyncLogRepository struct {
	db *gorm.DB
}

// NewApiSyncLogRepository 创建同步审计仓库
func NewApiSyncLogRepository(db *gorm.DB) ApiSyncLogRepository {
	return &apiSyncLogRepository{db: db}
}

func (r *apiSyncLogRepository) Create(ctx context.Context, log *model.ApiSyncLog) error {
	// 摘要截断，防止超长错误把审计写挂
	if len(log.ErrorSummary) > 2000 {
		log.ErrorSummary = log.ErrorSummary[:2000]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *apiSyncLogRepository) ListRecent(ctx context.Context, syncType string, limit int) ([]model.ApiSyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.ApiSyncLog
	db := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if syncType != "" {
		db = db.Where("sync_type = ?", syncType)
	}
	err := db.Find(&logs).Error
	return logs, err
}

package repository

import (
	"context"

	"github.com/wfunc/gem-game/internal/models"
	"gorm.io/gorm"
)

// CommandRecordRepository 命令幂等记录仓储接口
type CommandRecordRepository interface {
	Create(ctx context.Context, record *models.CommandRecord) error
	FindBySessionAndKey(ctx context.Context, sessionID, idempotencyKey string) (*models.CommandRecord, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

// commandRecordRepo 命令幂等记录仓储实现
type commandRecordRepo struct {
	db *gorm.DB
}

// NewCommandRecordRepository 创建命令幂等记录仓储
func NewCommandRecordRepository(db *gorm.DB) CommandRecordRepository {
	return &commandRecordRepo{db: db}
}

// Create 创建命令记录，(session_id, idempotency_key)唯一
func (r *commandRecordRepo) Create(ctx context.Context, record *models.CommandRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindBySessionAndKey 按会话与幂等键查找，不存在时返回(nil, nil)
func (r *commandRecordRepo) FindBySessionAndKey(ctx context.Context, sessionID, idempotencyKey string) (*models.CommandRecord, error) {
	var record models.CommandRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND idempotency_key = ?", sessionID, idempotencyKey).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountBySession 统计会话已提交的命令数
func (r *commandRecordRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommandRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

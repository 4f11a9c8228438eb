package repository

import (
	"context"

	"github.com/wfunc/gem-game/internal/models"
	"gorm.io/gorm"
)

// GameEventRepository 会话事件仓储接口
type GameEventRepository interface {
	CreateBatch(ctx context.Context, events []*models.GameEventRecord) error
	ListBySession(ctx context.Context, sessionID string, fromVersion int, p *Pagination) ([]*models.GameEventRecord, error)
	LatestVersion(ctx context.Context, sessionID string) (int, error)
}

// gameEventRepo 会话事件仓储实现
type gameEventRepo struct {
	db *gorm.DB
}

// NewGameEventRepository 创建会话事件仓储
func NewGameEventRepository(db *gorm.DB) GameEventRepository {
	return &gameEventRepo{db: db}
}

// CreateBatch 批量写入事件，(session_id, version)唯一
func (r *gameEventRepo) CreateBatch(ctx context.Context, events []*models.GameEventRecord) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

// ListBySession 按会话列出事件，版本升序，可指定起始版本与分页
func (r *gameEventRepo) ListBySession(ctx context.Context, sessionID string, fromVersion int, p *Pagination) ([]*models.GameEventRecord, error) {
	var events []*models.GameEventRecord

	query := r.db.WithContext(ctx).
		Model(&models.GameEventRecord{}).
		Where("session_id = ? AND version >= ?", sessionID, fromVersion)

	query.Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("session_id = ? AND version >= ?", sessionID, fromVersion).
		Order("version asc").
		Scopes(p.Scope).
		Find(&events).Error

	return events, err
}

// LatestVersion 会话最新事件版本，无事件时返回0
func (r *gameEventRepo) LatestVersion(ctx context.Context, sessionID string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).
		Model(&models.GameEventRecord{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	return version, err
}

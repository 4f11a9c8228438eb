package repository

import (
	"context"

	"github.com/wfunc/gem-game/internal/models"
	"gorm.io/gorm"
)

// GameSessionRepository 游戏会话仓储接口
type GameSessionRepository interface {
	Create(ctx context.Context, session *models.GameSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error)
	UpdateWithVersionGuard(ctx context.Context, sessionID string, fromVersion int, updates map[string]interface{}) (int64, error)
	List(ctx context.Context, p *Pagination) ([]*models.GameSession, error)
	ListByStatus(ctx context.Context, status string, p *Pagination) ([]*models.GameSession, error)
}

// gameSessionRepo 游戏会话仓储实现
type gameSessionRepo struct {
	db *gorm.DB
}

// NewGameSessionRepository 创建游戏会话仓储
func NewGameSessionRepository(db *gorm.DB) GameSessionRepository {
	return &gameSessionRepo{db: db}
}

// Create 创建游戏会话
func (r *gameSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindBySessionID 根据会话ID查找，不存在时返回(nil, nil)
func (r *gameSessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateWithVersionGuard 带乐观版本守卫的更新。
// 只有当前版本等于fromVersion时才更新，返回受影响行数。
func (r *gameSessionRepo) UpdateWithVersionGuard(ctx context.Context, sessionID string, fromVersion int, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("session_id = ? AND version = ?", sessionID, fromVersion).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// List 分页列出全部会话
func (r *gameSessionRepo) List(ctx context.Context, p *Pagination) ([]*models.GameSession, error) {
	var sessions []*models.GameSession

	r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Scopes(p.Scope).
		Find(&sessions).Error

	return sessions, err
}

// ListByStatus 按状态分页列出会话
func (r *gameSessionRepo) ListByStatus(ctx context.Context, status string, p *Pagination) ([]*models.GameSession, error) {
	var sessions []*models.GameSession

	r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("status = ?", status).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc").
		Scopes(p.Scope).
		Find(&sessions).Error

	return sessions, err
}

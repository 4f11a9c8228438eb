package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 事务管理器
	txManager TransactionManager

	// 仓储实例（使用懒加载）
	gameSessionOnce sync.Once
	gameSession     GameSessionRepository

	commandRecordOnce sync.Once
	commandRecord     CommandRecordRepository

	gameEventOnce sync.Once
	gameEvent     GameEventRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// GameSession 获取游戏会话仓储
func (m *Manager) GameSession() GameSessionRepository {
	m.gameSessionOnce.Do(func() {
		m.gameSession = NewGameSessionRepository(m.db)
	})
	return m.gameSession
}

// CommandRecord 获取命令幂等记录仓储
func (m *Manager) CommandRecord() CommandRecordRepository {
	m.commandRecordOnce.Do(func() {
		m.commandRecord = NewCommandRecordRepository(m.db)
	})
	return m.commandRecord
}

// GameEvent 获取会话事件仓储
func (m *Manager) GameEvent() GameEventRepository {
	m.gameEventOnce.Do(func() {
		m.gameEvent = NewGameEventRepository(m.db)
	})
	return m.gameEvent
}

// WithTransaction 在事务中执行操作
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.txManager.WithTransaction(ctx, fn)
}

package database

import (
	"fmt"

	"github.com/wfunc/gem-game/internal/logger"
	"github.com/wfunc/gem-game/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	migrationModels := []interface{}{
		&models.GameSession{},
		&models.CommandRecord{},
		&models.GameEventRecord{},
	}

	logger.Info("开始数据库迁移...")

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 命令记录按 (会话, 幂等键) 唯一，事件按 (会话, 版本) 唯一
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_command_records_session_key ON command_records(session_id, idempotency_key)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_game_event_records_session_version ON game_event_records(session_id, version)",
		"CREATE INDEX IF NOT EXISTS idx_game_sessions_status ON game_sessions(status)",
	}
	for _, idx := range indexes {
		if err := DB.Exec(idx).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", idx), zap.Error(err))
		}
	}

	logger.Info("数据库迁移完成")
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	var tables []string
	if err := DB.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			logger.Error("删除表失败", zap.String("table", table), zap.Error(err))
			return err
		}
	}

	logger.Info("所有表已删除")
	return nil
}

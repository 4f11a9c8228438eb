package service

import (
	"github.com/wfunc/gem-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	DefaultPlayers []string
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		DefaultPlayers: []string{"player-1", "player-2"},
	}
}

// Services 服务集合
type Services struct {
	Session SessionService
	Command CommandService
}

// NewServices 创建服务集合，notifier可为nil
func NewServices(db *gorm.DB, config *Config, notifier ChangeNotifier, log *zap.Logger) *Services {
	manager := repository.NewManager(db)

	sessionService := NewSessionService(
		db,
		manager.GameSession(),
		manager.GameEvent(),
		config.DefaultPlayers,
		log,
	)

	commandService := NewCommandService(db, manager, notifier, log)

	return &Services{
		Session: sessionService,
		Command: commandService,
	}
}

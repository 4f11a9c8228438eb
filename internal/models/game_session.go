package models

import (
	"time"
)

// GameSession 游戏会话模型（状态以JSON快照持久化）
type GameSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SessionID       string    `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	Seed            string    `gorm:"size:64;not null" json:"seed"`
	Version         int       `gorm:"not null" json:"version"`
	CurrentPlayerID string    `gorm:"size:64" json:"current_player_id"`
	StateData       string    `gorm:"type:text;not null" json:"state_data"`        // JSON格式的完整会话状态
	PlayerOrderData string    `gorm:"type:text;not null" json:"player_order_data"` // JSON格式的玩家顺序
	DeckData        string    `gorm:"type:text;not null" json:"deck_data"`         // JSON格式的各层牌堆列表（创建后不变）
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (GameSession) TableName() string {
	return "game_sessions"
}

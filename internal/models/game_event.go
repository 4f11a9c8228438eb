package models

import (
	"time"
)

// GameEventRecord 会话事件审计记录（每个已提交事件一行）
type GameEventRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:64;not null;index:idx_game_event_records_session_version,unique" json:"session_id"`
	Version     int       `gorm:"not null;index:idx_game_event_records_session_version,unique" json:"version"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	ActorID     string    `gorm:"size:64;not null" json:"actor_id"`
	PayloadData string    `gorm:"type:text;not null" json:"payload_data"` // JSON格式的事件负载
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (GameEventRecord) TableName() string {
	return "game_event_records"
}

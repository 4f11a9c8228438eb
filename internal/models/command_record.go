package models

import (
	"time"
)

// CommandRecord 命令幂等记录（记录已提交命令的指纹与结果）
type CommandRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"size:64;not null;index:idx_command_records_session_key,unique" json:"session_id"`
	IdempotencyKey string    `gorm:"size:128;not null;index:idx_command_records_session_key,unique" json:"idempotency_key"`
	Fingerprint    string    `gorm:"type:text;not null" json:"fingerprint"`
	EventsData     string    `gorm:"type:text;not null" json:"events_data"`     // JSON格式的已提交事件列表
	NextStateData  string    `gorm:"type:text;not null" json:"next_state_data"` // JSON格式的提交后状态
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CommandRecord) TableName() string {
	return "command_records"
}

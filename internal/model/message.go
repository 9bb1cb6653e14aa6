package model

import "time"

// Message 频道消息。UserName/AvatarURL 是写入时的快照，改名不回溯历史消息
type Message struct {
	ID        string `gorm:"type:char(36);primaryKey" json:"id"`
	ChannelID string `gorm:"type:char(36);not null;index:idx_channel_time,priority:1" json:"channel_id"`
	UserID    string `gorm:"type:char(36);not null;index" json:"user_id"`
	UserName  string `gorm:"size:64;not null" json:"user_name"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Likes     int64  `gorm:"not null;default:0" json:"likes"`
	Replies   int64  `gorm:"not null;default:0" json:"replies"`
	CreatedAt time.Time `gorm:"index:idx_channel_time,priority:2" json:"created_at"`
}

func (m *Message) EntityID() string { return m.ID }

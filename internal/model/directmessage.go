package model

import "time"

// DirectMessage 私信。删除是软删除：内容替换成占位符，行保留
type DirectMessage struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	SenderID       string     `gorm:"type:char(36);not null;index:idx_dm_pair,priority:1" json:"sender_id"`
	ReceiverID     string     `gorm:"type:char(36);not null;index:idx_dm_pair,priority:2" json:"receiver_id"`
	SenderName     string     `gorm:"size:64;not null" json:"sender_name"`
	ReceiverName   string     `gorm:"size:64;not null" json:"receiver_name"`
	SenderAvatar   string     `gorm:"size:255" json:"sender_avatar"`
	ReceiverAvatar string     `gorm:"size:255" json:"receiver_avatar"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	IsDeleted      bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (m *DirectMessage) EntityID() string { return m.ID }

func (DirectMessage) TableName() string { return "direct_messages" }

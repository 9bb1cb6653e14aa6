package model

import "time"

// UserPresence 在线状态。行本身只是快照，真正的存活信号是 redis 心跳键的 TTL
type UserPresence struct {
	UserID    string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	Name      string    `gorm:"size:64" json:"name"`
	Email     string    `gorm:"size:64" json:"email"`
	AvatarURL string    `gorm:"size:255" json:"avatar_url"`
	IsOnline  bool      `gorm:"not null;default:false" json:"is_online"`
	LastSeen  time.Time `json:"last_seen"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (p *UserPresence) EntityID() string { return p.UserID }

func (UserPresence) TableName() string { return "user_presence" }

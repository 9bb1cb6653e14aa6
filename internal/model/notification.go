package model

import "time"

const (
	NotifyTypeMessage       = "message"
	NotifyTypeMention       = "mention"
	NotifyTypeChannelInvite = "channel_invite"
	NotifyTypeSystem        = "system"
)

type Notification struct {
	ID        string `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string `gorm:"type:char(36);not null;index:idx_user_time,priority:1" json:"user_id"`
	Type      string `gorm:"size:32;not null" json:"type"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Message   string `gorm:"type:text" json:"message"`
	Read      bool   `gorm:"not null;default:false" json:"read"`
	Data      string `gorm:"type:json" json:"data,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_user_time,priority:2,sort:desc" json:"created_at"`
}

func (n *Notification) EntityID() string { return n.ID }

// NotificationOutbox 通知事件外发表，由 relayer 批量投递到 kafka
type NotificationOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	UserID    string `gorm:"type:char(36);not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }

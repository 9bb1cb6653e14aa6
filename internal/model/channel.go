package model

import "time"

// Channel 聊天频道。name 在创建时已归一化为 [a-z0-9-]
type Channel struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsPrivate   bool   `gorm:"not null;default:false" json:"is_private"`
	CreatedBy   string `gorm:"type:char(36);not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Channel) EntityID() string { return c.ID }

package model

import "time"

type User struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Username  string `gorm:"uniqueIndex;size:32;not null"`
	Password  string `gorm:"size:255;not null"`
	Email     string `gorm:"uniqueIndex;size:64;not null"`
	AvatarURL string `gorm:"size:255"`
	Role      int    `gorm:"default:0"` // 0=member, 1=admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role >= 1
}

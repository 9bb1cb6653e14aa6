package model

import "time"

const (
	VerifyLevelNone     = "unverified"
	VerifyLevelEmail    = "email_verified"
	VerifyLevelPhone    = "phone_verified"
	VerifyLevelIdentity = "identity_verified"
)

// UserVerification 私信资格门槛：双方都 is_verified 才能互发私信
type UserVerification struct {
	UserID            string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	IsVerified        bool      `gorm:"not null;default:false" json:"is_verified"`
	VerificationLevel string    `gorm:"size:32;not null;default:'unverified'" json:"verification_level"`
	VerifiedBy        string    `gorm:"type:char(36)" json:"verified_by"`
	VerifiedAt        time.Time `json:"verified_at"`
}

func (UserVerification) TableName() string { return "user_verification" }

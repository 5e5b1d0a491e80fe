package models

import (
	"time"
)

// RefreshToken is the server-side session record. Revoking it is what
// "sign out" means remotely.
type RefreshToken struct {
	BaseModel
	AccountID string    `gorm:"size:36;index;not null" json:"accountId"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

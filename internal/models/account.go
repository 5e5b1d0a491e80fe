package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Account is the credential identity held by the auth provider. It is
// independent of the application role: the role and display name recorded
// here are registration metadata, used to (re)create the matching Profile.
type Account struct {
	BaseModel
	Email             string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password          string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FullName          string `gorm:"size:255" json:"-"`
	Role              Role   `gorm:"size:20" json:"-"`
	VerificationToken string `gorm:"size:255" json:"-"`
	IsVerified        bool   `gorm:"default:false" json:"isVerified"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:AccountID" json:"-"`
}

// SetPassword hashes a password and sets it on the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

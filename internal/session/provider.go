package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-management-server/internal/apperrors"
	"hospital-management-server/internal/models"
)

// GormProvider implements Provider and ProfileStore over the relational
// store.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider creates a GormProvider.
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

var _ Provider = (*GormProvider)(nil)
var _ ProfileStore = (*GormProvider)(nil)

// CreateAccount stores a new credential account with a fresh verification
// token. The email uniqueness constraint lives in the store.
func (p *GormProvider) CreateAccount(ctx context.Context, email, password, fullName string, role models.Role) (*models.Account, error) {
	account := models.Account{
		Email:             email,
		FullName:          fullName,
		Role:              role,
		VerificationToken: uuid.New().String(),
	}
	if err := account.SetPassword(password); err != nil {
		return nil, apperrors.Remote("hash password", err)
	}
	if err := p.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, apperrors.Remote("create account", err)
	}
	return &account, nil
}

// Authenticate exchanges credentials for the account record.
func (p *GormProvider) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	var account models.Account
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.AuthenticationError{Reason: apperrors.ReasonInvalidCredentials}
		}
		return nil, apperrors.Remote("authenticate", err)
	}
	if !account.CheckPassword(password) {
		return nil, &apperrors.AuthenticationError{Reason: apperrors.ReasonInvalidCredentials}
	}
	if !account.IsVerified {
		return nil, &apperrors.AuthenticationError{Reason: apperrors.ReasonEmailNotVerified}
	}
	return &account, nil
}

// AccountByID fetches one account.
func (p *GormProvider) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := p.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get account", err)
	}
	return &account, nil
}

// VerifyEmail marks the account holding the token as verified and clears the
// token.
func (p *GormProvider) VerifyEmail(ctx context.Context, verificationToken string) (*models.Account, error) {
	var account models.Account
	err := p.db.WithContext(ctx).
		Where("verification_token = ? AND is_verified = ?", verificationToken, false).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.ValidationError{Field: "token", Message: "unknown or already used verification token"}
		}
		return nil, apperrors.Remote("verify email", err)
	}

	account.IsVerified = true
	account.VerificationToken = ""
	if err := p.db.WithContext(ctx).Save(&account).Error; err != nil {
		return nil, apperrors.Remote("verify email", err)
	}
	return &account, nil
}

// StoreRefreshToken records a session token for later revocation checks.
func (p *GormProvider) StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	record := models.RefreshToken{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		return apperrors.Remote("store refresh token", err)
	}
	return nil
}

// ValidRefreshToken returns the live session record for token, or
// ErrTokenNotFound when it is unknown, revoked or expired.
func (p *GormProvider) ValidRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := p.db.WithContext(ctx).
		Where("token = ? AND is_revoked = ? AND expires_at > ?", token, false, time.Now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, apperrors.Remote("check refresh token", err)
	}
	return &record, nil
}

// RevokeRefreshToken marks the session record revoked. Revoking an unknown
// token returns ErrTokenNotFound.
func (p *GormProvider) RevokeRefreshToken(ctx context.Context, token string) error {
	var record models.RefreshToken
	err := p.db.WithContext(ctx).
		Where("token = ? AND is_revoked = ?", token, false).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return apperrors.Remote("revoke refresh token", err)
	}

	record.IsRevoked = true
	record.ExpiresAt = time.Now()
	if err := p.db.WithContext(ctx).Save(&record).Error; err != nil {
		return apperrors.Remote("revoke refresh token", err)
	}
	return nil
}

// CreateProfile inserts the profile row. Uniqueness of auth_uid is enforced
// by the store, not checked here.
func (p *GormProvider) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Create(profile).Error; err != nil {
		return apperrors.Remote("create profile", err)
	}
	return nil
}

// ProfileByAuthUID fetches the profile bound to an account.
func (p *GormProvider) ProfileByAuthUID(ctx context.Context, authUID string) (*models.Profile, error) {
	var profile models.Profile
	if err := p.db.WithContext(ctx).Where("auth_uid = ?", authUID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, apperrors.Remote("get profile", err)
	}
	return &profile, nil
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-management-server/internal/apperrors"
	"hospital-management-server/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second connection would see an empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func TestGormProvider_CreateAccountAndAuthenticate(t *testing.T) {
	provider := NewGormProvider(testDB(t))
	ctx := context.Background()

	account, err := provider.CreateAccount(ctx, "dr.rao@clinic.test", "hunter2hunter2", "Dr. Rao", models.RoleDoctor)
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.NotEmpty(t, account.VerificationToken)
	assert.False(t, account.IsVerified)
	assert.NotEqual(t, "hunter2hunter2", account.Password, "password must be stored hashed")

	// Unverified accounts cannot sign in yet.
	_, err = provider.Authenticate(ctx, "dr.rao@clinic.test", "hunter2hunter2")
	reason, ok := apperrors.IsAuthentication(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonEmailNotVerified, reason)

	verified, err := provider.VerifyEmail(ctx, account.VerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.VerificationToken)

	got, err := provider.Authenticate(ctx, "dr.rao@clinic.test", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestGormProvider_AuthenticateFailures(t *testing.T) {
	provider := NewGormProvider(testDB(t))
	ctx := context.Background()

	account, err := provider.CreateAccount(ctx, "dr.rao@clinic.test", "hunter2hunter2", "Dr. Rao", models.RoleDoctor)
	require.NoError(t, err)
	_, err = provider.VerifyEmail(ctx, account.VerificationToken)
	require.NoError(t, err)

	// Unknown email and wrong password produce the same reason.
	_, err = provider.Authenticate(ctx, "nobody@clinic.test", "hunter2hunter2")
	reason, ok := apperrors.IsAuthentication(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonInvalidCredentials, reason)

	_, err = provider.Authenticate(ctx, "dr.rao@clinic.test", "wrong-password")
	reason, ok = apperrors.IsAuthentication(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonInvalidCredentials, reason)
}

func TestGormProvider_VerifyEmailUnknownToken(t *testing.T) {
	provider := NewGormProvider(testDB(t))

	_, err := provider.VerifyEmail(context.Background(), "no-such-token")
	assert.True(t, apperrors.IsValidation(err))
}

func TestGormProvider_RefreshTokenLifecycle(t *testing.T) {
	provider := NewGormProvider(testDB(t))
	ctx := context.Background()

	account, err := provider.CreateAccount(ctx, "dr.rao@clinic.test", "hunter2hunter2", "Dr. Rao", models.RoleDoctor)
	require.NoError(t, err)

	err = provider.StoreRefreshToken(ctx, account.ID, "token-abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	record, err := provider.ValidRefreshToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, account.ID, record.AccountID)

	require.NoError(t, provider.RevokeRefreshToken(ctx, "token-abc"))

	_, err = provider.ValidRefreshToken(ctx, "token-abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Revoking twice reports the token as gone.
	err = provider.RevokeRefreshToken(ctx, "token-abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestGormProvider_ExpiredRefreshTokenIsInvalid(t *testing.T) {
	provider := NewGormProvider(testDB(t))
	ctx := context.Background()

	err := provider.StoreRefreshToken(ctx, "acct-1", "stale", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = provider.ValidRefreshToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestGormProvider_ProfileRoundTrip(t *testing.T) {
	provider := NewGormProvider(testDB(t))
	ctx := context.Background()

	profile := &models.Profile{AuthUID: "acct-1", Role: models.RolePatient, FullName: "Asha Rao", Email: "asha@clinic.test"}
	require.NoError(t, provider.CreateProfile(ctx, profile))
	assert.NotEmpty(t, profile.ID)

	got, err := provider.ProfileByAuthUID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, models.RolePatient, got.Role)

	_, err = provider.ProfileByAuthUID(ctx, "acct-unknown")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

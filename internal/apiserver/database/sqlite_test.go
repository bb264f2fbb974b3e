package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/migestion/migestion/internal/common/config"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	cfg := &config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	db, err := NewSQLite(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedTenantWithUser(t *testing.T, db Database, slug, email string) (*Tenant, *User) {
	t.Helper()
	ctx := context.Background()

	tenant := &Tenant{Name: "Acme Inc", Slug: slug, Status: TenantActive}
	require.NoError(t, db.CreateTenant(ctx, tenant))

	user := &User{
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "García",
		Role:         RoleOwner,
		Status:       UserActive,
	}
	require.NoError(t, db.CreateUser(ctx, user))
	return tenant, user
}

func TestTenantsAndUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tenant, user := seedTenantWithUser(t, db, "acme", "a@x.com")
	assert.NotEmpty(t, tenant.ID)
	assert.NotEmpty(t, user.ID)

	gotTenant, err := db.GetTenantBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, gotTenant.ID)

	gotTenant, err = db.GetTenantByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", gotTenant.Name)

	_, err = db.GetTenantBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	gotUser, err := db.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)

	gotUser, err = db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, gotUser.Tenant.ID) // tenant preloaded

	now := time.Now()
	require.NoError(t, db.UpdateLastLogin(ctx, user.ID, now))
	gotUser, err = db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, gotUser.LastLoginAt)
	assert.WithinDuration(t, now, *gotUser.LastLoginAt, time.Second)
}

func TestSlugUniqueness(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedTenantWithUser(t, db, "acme", "a@x.com")
	err := db.CreateTenant(ctx, &Tenant{Name: "Other", Slug: "acme", Status: TenantActive})
	assert.Error(t, err)
}

func TestEmailUniquePerTenantOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tenant, _ := seedTenantWithUser(t, db, "acme", "a@x.com")

	// same email within the same tenant is rejected
	err := db.CreateUser(ctx, &User{TenantID: tenant.ID, Email: "a@x.com", PasswordHash: "h", Role: RoleUser, Status: UserActive})
	assert.Error(t, err)

	// same email under another tenant is allowed
	other := &Tenant{Name: "Beta", Slug: "beta", Status: TenantActive}
	require.NoError(t, db.CreateTenant(ctx, other))
	err = db.CreateUser(ctx, &User{TenantID: other.ID, Email: "a@x.com", PasswordHash: "h", Role: RoleOwner, Status: UserActive})
	assert.NoError(t, err)
}

func TestGetUserByEmail_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, first := seedTenantWithUser(t, db, "acme", "a@x.com")

	other := &Tenant{Name: "Beta", Slug: "beta", Status: TenantActive}
	require.NoError(t, db.CreateTenant(ctx, other))
	second := &User{
		TenantID: other.ID, Email: "a@x.com", PasswordHash: "h",
		Role: RoleOwner, Status: UserActive,
		CreatedAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.CreateUser(ctx, second))

	got, err := db.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, user := seedTenantWithUser(t, db, "acme", "a@x.com")

	token := &RefreshToken{
		UserID:    user.ID,
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.CreateRefreshToken(ctx, token))

	got, err := db.GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, got.Valid(time.Now()))

	// duplicate hash is rejected
	err = db.CreateRefreshToken(ctx, &RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)})
	assert.Error(t, err)

	require.NoError(t, db.RevokeRefreshToken(ctx, got.ID, time.Now()))
	got, err = db.GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.False(t, got.Valid(time.Now()))

	// revocation timestamp is not overwritten by a second revoke
	firstRevokedAt := *got.RevokedAt
	require.NoError(t, db.RevokeRefreshToken(ctx, got.ID, time.Now().Add(time.Hour)))
	got, err = db.GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, firstRevokedAt.Unix(), got.RevokedAt.Unix())
}

func TestRefreshTokenValidity(t *testing.T) {
	now := time.Now()
	live := &RefreshToken{ExpiresAt: now.Add(time.Hour)}
	expired := &RefreshToken{ExpiresAt: now.Add(-time.Hour)}
	revoked := &RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &now}

	assert.True(t, live.Valid(now))
	assert.False(t, expired.Valid(now))
	assert.False(t, revoked.Valid(now))
}

func TestRevokeAllUserRefreshTokens(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, user := seedTenantWithUser(t, db, "acme", "a@x.com")
	for _, hash := range []string{"h1", "h2", "h3"} {
		require.NoError(t, db.CreateRefreshToken(ctx, &RefreshToken{
			UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.NoError(t, db.RevokeAllUserRefreshTokens(ctx, user.ID, time.Now()))

	for _, hash := range []string{"h1", "h2", "h3"} {
		got, err := db.GetRefreshTokenByHash(ctx, hash)
		require.NoError(t, err)
		assert.NotNil(t, got.RevokedAt)
	}
}

func TestDeleteExpiredRefreshTokens(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, user := seedTenantWithUser(t, db, "acme", "a@x.com")
	past := time.Now().Add(-time.Hour)

	require.NoError(t, db.CreateRefreshToken(ctx, &RefreshToken{UserID: user.ID, TokenHash: "dead", ExpiresAt: past}))
	require.NoError(t, db.CreateRefreshToken(ctx, &RefreshToken{UserID: user.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}))

	deleted, err := db.DeleteExpiredRefreshTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = db.GetRefreshTokenByHash(ctx, "dead")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = db.GetRefreshTokenByHash(ctx, "live")
	assert.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(ctx context.Context) error {
		if err := db.CreateTenant(ctx, &Tenant{Name: "Acme", Slug: "acme", Status: TenantActive}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	// the tenant insert was rolled back with the failure
	_, err = db.GetTenantBySlug(ctx, "acme")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTenantSettings(t *testing.T) {
	tenant := &Tenant{Settings: `{"notifications":{"email":true},"plan":"pro"}`}
	assert.Equal(t, "pro", tenant.Setting("plan").String())
	assert.True(t, tenant.Setting("notifications.email").Bool())
	assert.False(t, tenant.Setting("missing").Exists())
}

func TestFactory(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	assert.NoError(t, db.Close())

	_, err = NewDatabase(&config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

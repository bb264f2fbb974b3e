package database

import (
	"context"
	"time"
)

// Database defines the persistence operations used by the auth core. Every
// query touching users or refresh tokens is parameterized by the owning
// identifier, so tenant isolation needs no locking beyond row consistency.
type Database interface {
	// Close closes the underlying connection pool.
	Close() error

	// Transaction runs fn inside a single transaction. The transaction is
	// carried in the context and picked up by every operation called with it.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateTenant persists a new tenant.
	CreateTenant(ctx context.Context, tenant *Tenant) error

	// GetTenantBySlug returns the tenant owning slug, or gorm.ErrRecordNotFound.
	GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetTenantByID returns a tenant by identifier.
	GetTenantByID(ctx context.Context, id string) (*Tenant, error)

	// UpdateTenantStatus moves a tenant through its lifecycle, e.g. into
	// suspension when a subscription lapses.
	UpdateTenantStatus(ctx context.Context, id string, status TenantStatus) error

	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail looks a user up by email across all tenants, oldest
	// record first so repeated lookups resolve deterministically.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns a user with its tenant preloaded.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// UpdateUserStatus moves a user through its lifecycle.
	UpdateUserStatus(ctx context.Context, id string, status UserStatus) error

	// UpdateLastLogin stamps the user's last successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// CreateRefreshToken persists a refresh token hash row.
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshTokenByHash returns the row storing the given hash.
	GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error)

	// RevokeRefreshToken marks a single token revoked. A no-op for rows that
	// are already revoked.
	RevokeRefreshToken(ctx context.Context, id string, at time.Time) error

	// RevokeAllUserRefreshTokens revokes every live token of a user in one
	// bulk update.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string, at time.Time) error

	// DeleteExpiredRefreshTokens removes rows whose expiry or revocation
	// predates cutoff. Used by the retention sweep.
	DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// store implements the Database operations on top of a gorm connection.
// Driver-specific types embed it and only differ in how they open the
// connection.
type store struct {
	db *gorm.DB
}

func (s *store) migrate() error {
	return s.db.AutoMigrate(&Tenant{}, &User{}, &RefreshToken{})
}

// Close closes the database connection
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn in a single transaction carried through the context
func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *store) CreateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, s.db).Create(tenant).Error
}

func (s *store) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	var tenant Tenant
	err := getDBFromContext(ctx, s.db).Where("slug = ?", slug).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *store) GetTenantByID(ctx context.Context, id string) (*Tenant, error) {
	var tenant Tenant
	err := getDBFromContext(ctx, s.db).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *store) UpdateTenantStatus(ctx context.Context, id string, status TenantStatus) error {
	return getDBFromContext(ctx, s.db).
		Model(&Tenant{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *store) CreateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Create(user).Error
}

func (s *store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Where("email = ?", email).
		Order("created_at asc").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Preload("Tenant").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *store) UpdateUserStatus(ctx context.Context, id string, status UserStatus) error {
	return getDBFromContext(ctx, s.db).
		Model(&User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *store) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return getDBFromContext(ctx, s.db).
		Model(&User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}

func (s *store) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	return getDBFromContext(ctx, s.db).Create(token).Error
}

func (s *store) GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var token RefreshToken
	err := getDBFromContext(ctx, s.db).Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *store) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	return getDBFromContext(ctx, s.db).
		Model(&RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (s *store) RevokeAllUserRefreshTokens(ctx context.Context, userID string, at time.Time) error {
	return getDBFromContext(ctx, s.db).
		Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}

func (s *store) DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res := getDBFromContext(ctx, s.db).
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&RefreshToken{})
	return res.RowsAffected, res.Error
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantCancelled TenantStatus = "cancelled"
)

// Tenant is an isolated customer organization, the unit of data partitioning.
// The slug is immutable after creation.
type Tenant struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string       `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string       `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Status    TenantStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Settings  string       `json:"settings,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Setting reads a path from the tenant's free-form settings JSON.
func (t *Tenant) Setting(path string) gjson.Result {
	return gjson.Get(t.Settings, path)
}

// UserRole represents the role of a user within its tenant
type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// UserStatus represents the lifecycle status of a user
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserPending  UserStatus = "pending"
)

// User belongs to exactly one tenant. Email is unique only within the owning
// tenant; the same address may exist under different tenants.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID     string     `json:"tenantId" gorm:"type:varchar(36);not null;uniqueIndex:idx_users_tenant_email"`
	Tenant       Tenant     `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string     `json:"firstName" gorm:"type:varchar(100)"`
	LastName     string     `json:"lastName" gorm:"type:varchar(100)"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RefreshToken stores the one-way hash of a refresh token secret. The raw
// bearer secret is never persisted.
type RefreshToken struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"userId" gorm:"type:varchar(36);not null;index"`
	User      User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TokenHash string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revokedAt" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Valid reports whether the token row is still usable: not revoked and not
// past its stored expiry. Expired-but-unrevoked rows count as invalid.
func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

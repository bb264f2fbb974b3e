package dto

import "time"

// RegisterRequest creates a tenant together with its owner user
type RegisterRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Slug        string `json:"slug" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest revokes a single refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the wire shape of a user
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// TenantResponse is the wire shape of a tenant
type TenantResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User         *UserResponse   `json:"user"`
	Tenant       *TenantResponse `json:"tenant"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

// TokenResponse is returned by refresh
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// MeResponse is returned by /auth/me
type MeResponse struct {
	User   *UserResponse   `json:"user"`
	Tenant *TenantResponse `json:"tenant"`
}

// Identity is the authenticated caller attached to the request context by
// the authentication middleware.
type Identity struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

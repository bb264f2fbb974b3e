package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/migestion/migestion/internal/apiserver/audit"
	"github.com/migestion/migestion/internal/apiserver/database"
	"github.com/migestion/migestion/internal/auth/jwt"
	"github.com/migestion/migestion/internal/auth/password"
	"github.com/migestion/migestion/internal/common/errorx"
)

// AuthService orchestrates registration, login, token refresh and logout
// over the identity and token stores.
type AuthService struct {
	db     database.Database
	codec  *jwt.Service
	hasher *password.Hasher
	audit  *audit.Dispatcher
	logger *zap.Logger
}

// NewAuthService creates a new auth service. dispatcher may be nil.
func NewAuthService(db database.Database, codec *jwt.Service, hasher *password.Hasher, dispatcher *audit.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:     db,
		codec:  codec,
		hasher: hasher,
		audit:  dispatcher,
		logger: logger,
	}
}

// RegisterInput carries the fields needed to create a tenant with its owner.
type RegisterInput struct {
	CompanyName string
	Slug        string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	ClientIP    string
}

// AuthResult is the outcome of a successful register, login or refresh.
type AuthResult struct {
	User         *database.User
	Tenant       *database.Tenant
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Register creates a tenant and its owner user atomically, then issues the
// first token pair. A failure in either insert leaves neither row behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if violations := password.ValidateStrength(in.Password); len(violations) > 0 {
		return nil, errorx.ErrValidation.WithDetail("password", violations)
	}

	email := normalizeEmail(in.Email)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))

	if _, err := s.db.GetTenantBySlug(ctx, slug); err == nil {
		return nil, errorx.ErrDuplicateSlug
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.internal("check slug", err)
	}

	// registration rejects an email taken under any tenant
	if _, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return nil, errorx.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.internal("check email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal("hash password", err)
	}

	tenant := &database.Tenant{
		Name:   in.CompanyName,
		Slug:   slug,
		Status: database.TenantActive,
	}
	user := &database.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         database.RoleOwner,
		Status:       database.UserActive,
	}

	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.db.CreateTenant(ctx, tenant); err != nil {
			return err
		}
		user.TenantID = tenant.ID
		return s.db.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, s.internal("create tenant and owner", err)
	}

	result, err := s.issuePair(ctx, user, tenant)
	if err != nil {
		return nil, err
	}

	s.audit.Emit(audit.Event{
		Action:   "register",
		UserID:   user.ID,
		TenantID: tenant.ID,
		Email:    user.Email,
		IP:       in.ClientIP,
		Success:  true,
	})
	return result, nil
}

// Login authenticates by email and password. Unknown email, wrong password,
// inactive user and inactive tenant all collapse to InvalidCredentials so
// the response leaks nothing about which check failed.
func (s *AuthService) Login(ctx context.Context, email, plain, clientIP string) (*AuthResult, error) {
	email = normalizeEmail(email)

	fail := func(reason string, userID, tenantID string) (*AuthResult, error) {
		s.audit.Emit(audit.Event{
			Action:   "login",
			UserID:   userID,
			TenantID: tenantID,
			Email:    email,
			IP:       clientIP,
			Success:  false,
			Reason:   reason,
		})
		return nil, errorx.ErrInvalidCredentials
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("unknown email", "", "")
		}
		return nil, s.internal("lookup user", err)
	}

	if !s.hasher.Compare(plain, user.PasswordHash) {
		return fail("wrong password", user.ID, user.TenantID)
	}
	if user.Status != database.UserActive {
		return fail("user not active", user.ID, user.TenantID)
	}

	tenant, err := s.db.GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return nil, s.internal("lookup tenant", err)
	}
	if tenant.Status != database.TenantActive {
		return fail("tenant not active", user.ID, user.TenantID)
	}

	now := time.Now()
	if err := s.db.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, s.internal("update last login", err)
	}
	user.LastLoginAt = &now

	result, err := s.issuePair(ctx, user, tenant)
	if err != nil {
		return nil, err
	}

	s.audit.Emit(audit.Event{
		Action:   "login",
		UserID:   user.ID,
		TenantID: tenant.ID,
		Email:    user.Email,
		IP:       clientIP,
		Success:  true,
	})
	return result, nil
}

// Refresh rotates a refresh token: the consumed token is revoked and a new
// pair is issued. A replayed token finds its row already revoked and fails.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*AuthResult, error) {
	if _, err := s.codec.VerifyRefresh(rawToken); err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, errorx.ErrTokenExpired
		}
		return nil, errorx.ErrInvalidToken
	}

	row, err := s.db.GetRefreshTokenByHash(ctx, jwt.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrInvalidToken
		}
		return nil, s.internal("lookup refresh token", err)
	}
	// stored expiry and revocation are checked independently of the JWT's
	// own expiry claim
	if !row.Valid(time.Now()) {
		return nil, errorx.ErrInvalidToken
	}

	user, err := s.db.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrNotFound
		}
		return nil, s.internal("lookup user", err)
	}
	tenant := &user.Tenant

	if err := s.db.RevokeRefreshToken(ctx, row.ID, time.Now()); err != nil {
		return nil, s.internal("revoke refresh token", err)
	}

	result, err := s.issuePair(ctx, user, tenant)
	if err != nil {
		return nil, err
	}

	s.audit.Emit(audit.Event{
		Action:   "refresh",
		UserID:   user.ID,
		TenantID: tenant.ID,
		Email:    user.Email,
		Success:  true,
	})
	return result, nil
}

// Logout revokes the given refresh token. Unknown or already-revoked tokens
// are a silent success: the desired end state already holds.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	row, err := s.db.GetRefreshTokenByHash(ctx, jwt.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return s.internal("lookup refresh token", err)
	}
	if row.RevokedAt != nil {
		return nil
	}

	if err := s.db.RevokeRefreshToken(ctx, row.ID, time.Now()); err != nil {
		return s.internal("revoke refresh token", err)
	}

	s.audit.Emit(audit.Event{
		Action:  "logout",
		UserID:  row.UserID,
		Success: true,
	})
	return nil
}

// LogoutAll terminates every session of the user in one bulk revocation.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.db.RevokeAllUserRefreshTokens(ctx, userID, time.Now()); err != nil {
		return s.internal("revoke all refresh tokens", err)
	}

	s.audit.Emit(audit.Event{
		Action:  "logout_all",
		UserID:  userID,
		Success: true,
	})
	return nil
}

// CurrentUser loads the authenticated user with its tenant for profile
// display.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrNotFound
		}
		return nil, s.internal("lookup user", err)
	}
	return user, nil
}

// PurgeExpiredTokens deletes refresh-token rows dead since before cutoff.
// Retention hook for an external job.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.db.DeleteExpiredRefreshTokens(ctx, cutoff)
}

func (s *AuthService) issuePair(ctx context.Context, user *database.User, tenant *database.Tenant) (*AuthResult, error) {
	pair, err := s.codec.GeneratePair(user.ID, tenant.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, s.internal("generate token pair", err)
	}

	row := &database.RefreshToken{
		UserID:    user.ID,
		TokenHash: jwt.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.db.CreateRefreshToken(ctx, row); err != nil {
		return nil, s.internal("persist refresh token", err)
	}

	return &AuthResult{
		User:         user,
		Tenant:       tenant,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
	}, nil
}

func (s *AuthService) internal(op string, err error) error {
	if s.logger != nil {
		s.logger.Error("auth service failure", zap.String("op", op), zap.Error(err))
	}
	return errorx.ErrInternal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

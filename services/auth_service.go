package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/config"
	"github.com/labmanager/labmanager-api/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	loginAttemptsKey = "login_attempts:%s"
	lockoutKey       = "lockout:%s"
	revokedTokenKey  = "revoked_token:%s"
)

// TokenValidator checks a raw token and returns its validated claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthService signs lab staff in and out and restores sessions from tokens
type AuthService struct {
	db        *gorm.DB
	cache     Cache
	issuer    *auth.Issuer
	validator TokenValidator
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthService wires the account store, the lockout/revocation cache and the token settings
func NewAuthService(db *gorm.DB, cache Cache, issuer *auth.Issuer, v TokenValidator, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		cache:     cache,
		issuer:    issuer,
		validator: v,
		cfg:       cfg,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash stored for an account
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SeedAdmin creates the first account when it does not exist yet
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{Email: email, Name: "Administrador", PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	s.logger.Info("Seeded admin account", zap.String("email", email))
	return nil
}

// SignIn checks an email/password pair and issues a session token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *auth.Identity, error) {
	if s.cfg.UsesAuth0() {
		return "", nil, auth.ErrSignInDisabled
	}

	email = normalizeEmail(email)
	if err := s.checkLockout(ctx, email); err != nil {
		return "", nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.handleFailedLoginAttempt(ctx, email)
		return "", nil, auth.ErrInvalidCredential
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.handleFailedLoginAttempt(ctx, email)
		return "", nil, auth.ErrInvalidCredential
	}

	s.resetLoginAttempts(ctx, email)
	return s.issuer.Issue(strconv.FormatUint(uint64(user.ID), 10), user.Email)
}

// Restore validates a token and returns its identity unless it was revoked
func (s *AuthService) Restore(ctx context.Context, token string) (*auth.Identity, error) {
	raw, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidCredential, err)
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", auth.ErrInvalidCredential)
	}

	identity := auth.IdentityFromClaims(claims)
	revoked, err := s.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", auth.ErrInvalidCredential)
	}
	return identity, nil
}

// SignOut revokes the identity's token until it would have expired anyway
func (s *AuthService) SignOut(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt)
	if identity.ExpiresAt.IsZero() {
		ttl = s.cfg.TokenTTL
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(revokedTokenKey, identity.TokenID), identity.UserID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id was signed out
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := s.cache.Get(ctx, fmt.Sprintf(revokedTokenKey, tokenID))
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

// CurrentUser loads the account behind an identity. Identities from an
// external provider have no local account and yield a record built from the token.
func (s *AuthService) CurrentUser(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	id, err := strconv.ParseUint(identity.UserID, 10, 64)
	if err != nil || s.cfg.UsesAuth0() {
		return &models.User{Email: identity.Email}, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) checkLockout(ctx context.Context, email string) error {
	// An existing key means the account is locked
	if _, err := s.cache.Get(ctx, fmt.Sprintf(lockoutKey, email)); err == nil {
		return auth.ErrRateLimited
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, email string) {
	attemptsKey := fmt.Sprintf(loginAttemptsKey, email)
	attempts, err := s.cache.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Failed to count login attempt", zap.String("email", email), zap.Error(err))
		return
	}
	if attempts == 1 {
		_ = s.cache.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		if err := s.cache.Set(ctx, fmt.Sprintf(lockoutKey, email), "locked", s.cfg.LockoutDuration); err != nil {
			s.logger.Warn("Failed to lock account", zap.String("email", email), zap.Error(err))
		}
		_ = s.cache.Del(ctx, attemptsKey)
		s.logger.Warn("Account locked after failed sign-in attempts", zap.String("email", email))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, email string) {
	_ = s.cache.Del(ctx, fmt.Sprintf(loginAttemptsKey, email), fmt.Sprintf(lockoutKey, email))
}

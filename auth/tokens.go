package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labmanager/labmanager-api/config"
)

// CustomClaims contains the custom data we read from the token
type CustomClaims struct {
	Email string `json:"email"`
}

// Validate satisfies validator.CustomClaims; the registered claims carry all checks
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// NewValidator builds the token validator. Locally issued tokens are HS256
// signed with JWT_SECRET; with AUTH0_DOMAIN set, RS256 tokens are checked
// against the tenant's JWKS instead.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	customClaims := validator.WithCustomClaims(func() validator.CustomClaims {
		return &CustomClaims{}
	})

	if cfg.UsesAuth0() {
		issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		return validator.New(
			provider.KeyFunc,
			validator.RS256,
			issuerURL.String(),
			[]string{cfg.Auth0Audience},
			customClaims,
			validator.WithAllowedClockSkew(time.Minute),
		)
	}

	secret := []byte(cfg.JWTSecret)
	return validator.New(
		func(ctx context.Context) (interface{}, error) { return secret, nil },
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		customClaims,
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// IdentityFromClaims turns validated token claims into a session identity
func IdentityFromClaims(claims *validator.ValidatedClaims) *Identity {
	id := &Identity{
		UserID:  claims.RegisteredClaims.Subject,
		TokenID: claims.RegisteredClaims.ID,
	}
	if claims.RegisteredClaims.Expiry > 0 {
		id.ExpiresAt = time.Unix(claims.RegisteredClaims.Expiry, 0).UTC()
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		id.Email = custom.Email
	}
	return id
}

// Issuer signs session tokens for local accounts
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer creates an issuer from the JWT settings
func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.TokenTTL,
		now:      time.Now,
	}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given user and returns it with its identity
func (i *Issuer) Issue(userID, email string) (string, *Identity, error) {
	now := i.now()
	identity := &Identity{
		UserID:    userID,
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second).UTC(),
	}

	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{i.audience},
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        identity.TokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, identity, nil
}

package testutil

import (
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/config"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, email string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "labmanager",
			Subject: subject,
			ID:      "test-token-" + subject,
			Expiry:  time.Now().Add(time.Hour).Unix(),
		},
		CustomClaims: &auth.CustomClaims{
			Email: email,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, email string) {
	claims := MockValidatedClaims(userID, email)
	c.Set("user_id", userID)
	c.Set("validated_claims", claims)
}

// MockAuthMiddleware authenticates every request as the given user
func MockAuthMiddleware(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, email)
		c.Next()
	}
}

// TestConfig returns a configuration suitable for tests that issue local tokens
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:      "sqlite://:memory:",
		Port:             "8080",
		GoEnv:            "test",
		LogLevel:         "error",
		LabName:          "LABORATÓRIO DE PRÓTESE",
		LabTimezone:      "UTC",
		JWTSecret:        "test-secret",
		JWTIssuer:        "labmanager",
		JWTAudience:      "labmanager-api",
		TokenTTL:         time.Hour,
		MaxLoginAttempts: 5,
		LockoutDuration:  time.Minute,
	}
}

// IssueToken signs a local session token for tests
func IssueToken(t *testing.T, cfg *config.Config, userID, email string) string {
	t.Helper()
	token, _, err := auth.NewIssuer(cfg).Issue(userID, email)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}

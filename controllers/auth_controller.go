package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/middleware"
	"github.com/labmanager/labmanager-api/services"
	"go.uber.org/zap"
)

// AuthController exposes the auth gate over HTTP
type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthController creates the sign-in/sign-out handlers
func NewAuthController(authService *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: authService, logger: logger}
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, identity, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failure := auth.Classify(err)
		status, code := http.StatusInternalServerError, "SIGN_IN_FAILED"
		switch {
		case errors.Is(err, auth.ErrInvalidCredential):
			status, code = http.StatusUnauthorized, "INVALID_CREDENTIAL"
		case errors.Is(err, auth.ErrRateLimited):
			status, code = http.StatusTooManyRequests, "RATE_LIMITED"
		case errors.Is(err, auth.ErrSignInDisabled):
			status, code = http.StatusForbidden, "SIGN_IN_DISABLED"
		default:
			h.logger.Error("Sign-in failed", zap.Error(err))
		}

		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"reason":  failure.Reason,
				"message": failure.Message,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"state": auth.StateAuthenticated,
			"token": token,
			"user":  identity,
		},
	})
}

// Logout handles POST /api/v1/auth/logout - revokes the presented token
func (h *AuthController) Logout(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	if err := h.auth.SignOut(c.Request.Context(), identity); err != nil {
		h.logger.Error("Failed to sign out", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "SIGN_OUT_FAILED", "Failed to end the session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"state": auth.StateUnauthenticated,
		},
	})
}

// Session handles GET /api/v1/auth/session - the session restoration signal.
// A missing, invalid or revoked token resolves to unauthenticated.
func (h *AuthController) Session(c *gin.Context) {
	gate := auth.NewGate()

	var identity *auth.Identity
	if token := bearerToken(c); token != "" {
		restored, err := h.auth.Restore(c.Request.Context(), token)
		if err == nil {
			identity = restored
		} else if !errors.Is(err, auth.ErrInvalidCredential) {
			h.logger.Error("Failed to restore session", zap.Error(err))
		}
	}
	_ = gate.Resolve(identity)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"state": gate.State(),
			"user":  gate.Identity(),
		},
	})
}

// bearerToken reads the token from the Authorization header or the token query parameter
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Query("token")
}

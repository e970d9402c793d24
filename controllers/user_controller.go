package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/middleware"
	"github.com/labmanager/labmanager-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserController serves the signed-in account
type UserController struct {
	auth     *services.AuthService
	db       *gorm.DB
	profiles services.ProfileFetcher
	logger   *zap.Logger
}

// NewUserController creates the account handlers. profiles may be nil when
// accounts are local.
func NewUserController(authService *services.AuthService, db *gorm.DB, profiles services.ProfileFetcher, logger *zap.Logger) *UserController {
	return &UserController{auth: authService, db: db, profiles: profiles, logger: logger}
}

// UpdateProfileRequest represents the request body for updating the account
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func (h *UserController) GetMyProfile(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), identity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User account not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
		return
	}

	// accounts managed by the identity provider have no local record
	if user.ID == 0 && h.profiles != nil {
		info, err := h.profiles.UserInfo(c.Request.Context(), bearerToken(c))
		if err != nil {
			h.logger.Warn("Failed to fetch user profile", zap.Error(err))
		} else {
			user.Name = info.Name
			if info.Email != "" {
				user.Email = info.Email
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates the name or password of the account
func (h *UserController) UpdateMyProfile(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), identity)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.ID == 0) {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User account not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		updates["name"] = user.Name
	}
	if req.Password != nil {
		hash, err := services.HashPassword(*req.Password)
		if err != nil {
			h.logger.Error("Failed to hash password", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update password")
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
		h.logger.Error("Failed to update user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

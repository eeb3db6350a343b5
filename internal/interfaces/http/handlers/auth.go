// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/cart"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/middleware"
	"github.com/goldentier/storefront-backend/internal/pkg/ratelimit"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	identityService *identity.Service
	cartService     *cart.Service
	limiter         *ratelimit.Limiter
	config          *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AuthHandler {
	invitations := invitation.NewService(db, cfg)
	return &AuthHandler{
		identityService: identity.NewService(db, cfg, invitations),
		cartService:     cart.NewService(db, redisClient, cfg),
		limiter:         ratelimit.NewLimiter(redisClient),
		config:          cfg,
	}
}

// Register handles invitation-gated user registration
func (h *AuthHandler) Register(c *gin.Context) {
	allowed, _ := h.limiter.Allow(c.Request.Context(), "register", c.ClientIP(), ratelimit.RegisterLimit)
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many registration attempts, please try again later",
		})
		return
	}

	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.identityService.Register(&req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Fold any guest cart into the new account
	if sessionID := middleware.GetSessionIDFromContext(c); sessionID != "" {
		_ = h.cartService.MergeGuestCart(c.Request.Context(), response.User.ID, sessionID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    response,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	allowed, _ := h.limiter.Allow(c.Request.Context(), "login", c.ClientIP(), ratelimit.LoginLimit)
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many login attempts, please try again later",
		})
		return
	}

	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.identityService.Login(&req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return
	}

	_ = h.limiter.Reset(c.Request.Context(), "login", c.ClientIP())

	// Fold any guest cart into the user's cart
	if sessionID := middleware.GetSessionIDFromContext(c); sessionID != "" {
		_ = h.cartService.MergeGuestCart(c.Request.Context(), response.User.ID, sessionID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    response,
	})
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	tokens, err := h.identityService.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    tokens,
	})
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.identityService.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": user,
	})
}

// UpdateProfile applies partial updates to the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.identityService.UpdateProfile(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    user,
	})
}

// ChangePassword changes the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req identity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.identityService.ChangePassword(userID, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

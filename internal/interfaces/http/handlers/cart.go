// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/cart"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
	"github.com/goldentier/storefront-backend/internal/domain/pricing"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService     *cart.Service
	identityService *identity.Service
	config          *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	invitations := invitation.NewService(db, cfg)
	return &CartHandler{
		cartService:     cart.NewService(db, redisClient, cfg),
		identityService: identity.NewService(db, cfg, invitations),
		config:          cfg,
	}
}

// GetCart returns the current cart with recomputed totals
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, sessionID, discount := h.actor(c)

	response, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID, discount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AddItem adds a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, sessionID, discount := h.actor(c)

	response, err := h.cartService.AddItem(c.Request.Context(), userID, sessionID, discount, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    response,
	})
}

// UpdateItem sets the quantity of a cart line; zero removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, sessionID, discount := h.actor(c)
	variantSKU := c.Query("variant_sku")

	response, err := h.cartService.UpdateItem(c.Request.Context(), userID, sessionID, discount, uint(productID), variantSKU, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    response,
	})
}

// RemoveItem removes a cart line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	userID, sessionID, discount := h.actor(c)
	variantSKU := c.Query("variant_sku")

	response, err := h.cartService.RemoveItem(c.Request.Context(), userID, sessionID, discount, uint(productID), variantSKU)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    response,
	})
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, sessionID, _ := h.actor(c)

	if err := h.cartService.ClearCart(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

// SetVisibility toggles the cart's open/closed presentation state
func (h *CartHandler) SetVisibility(c *gin.Context) {
	var req struct {
		Open *bool `json:"open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, sessionID, _ := h.actor(c)

	if err := h.cartService.SetVisibility(c.Request.Context(), userID, sessionID, *req.Open); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart visibility updated",
	})
}

// actor resolves the acting user, guest session and pricing discount.
// Guests without a session header get a fresh session ID, echoed back
// in the X-Session-ID response header.
func (h *CartHandler) actor(c *gin.Context) (*uint, string, pricing.Discount) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		discount := pricing.None()
		if user, err := h.identityService.GetByID(userID); err == nil {
			discount = user.Discount()
		}
		return &userID, middleware.GetSessionIDFromContext(c), discount
	}

	sessionID := middleware.GetSessionIDFromContext(c)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	c.Header("X-Session-ID", sessionID)
	return nil, sessionID, pricing.None()
}

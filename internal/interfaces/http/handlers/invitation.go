// internal/interfaces/http/handlers/invitation.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/middleware"
)

// InvitationHandler handles invitation code endpoints
type InvitationHandler struct {
	invitationService *invitation.Service
	config            *config.Config
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(db *gorm.DB, cfg *config.Config) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitation.NewService(db, cfg),
		config:            cfg,
	}
}

// Validate checks whether a code can still be redeemed. Public so the
// registration form can verify a code before submitting.
func (h *InvitationHandler) Validate(c *gin.Context) {
	code, err := h.invitationService.Validate(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"code":  code.Code,
			"type":  code.Type,
			"valid": true,
		},
	})
}

// Create issues a new invitation code. Partners may only issue
// referral codes; admins may issue any type.
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req invitation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	code, err := h.invitationService.Create(userID, middleware.IsAdminFromContext(c), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invitation code created successfully",
		"data":    code,
	})
}

// List returns the caller's issued codes, or every code for admins
func (h *InvitationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var codes []invitation.Code
	var err error
	if middleware.IsAdminFromContext(c) {
		codes, err = h.invitationService.ListAll()
	} else {
		codes, err = h.invitationService.ListByCreator(userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": codes,
	})
}

// Deactivate disables an invitation code
func (h *InvitationHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation code ID"})
		return
	}

	if err := h.invitationService.Deactivate(uint(id), userID, middleware.IsAdminFromContext(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation code deactivated",
	})
}

// internal/interfaces/http/handlers/note.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/note"
	"github.com/goldentier/storefront-backend/internal/domain/order"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/middleware"
)

// NoteHandler handles order note endpoints
type NoteHandler struct {
	noteService *note.Service
	db          *gorm.DB
	config      *config.Config
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(db *gorm.DB, cfg *config.Config) *NoteHandler {
	return &NoteHandler{
		noteService: note.NewService(db, cfg),
		db:          db,
		config:      cfg,
	}
}

// Create attaches a note to an order
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req note.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.noteService.Create(uint(orderID), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Note added successfully",
		"data":    created,
	})
}

// List returns the notes on an order. Admins see internal notes; the
// order's owner sees only external ones.
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	isAdmin := middleware.IsAdminFromContext(c)
	if !isAdmin {
		var found order.Order
		if err := h.db.First(&found, uint(orderID)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if found.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this order"})
			return
		}
	}

	notes, err := h.noteService.ListForOrder(uint(orderID), isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": notes,
	})
}

// Delete removes a note
func (h *NoteHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("noteId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	if err := h.noteService.Delete(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Note deleted successfully",
	})
}

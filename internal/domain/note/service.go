// internal/domain/note/service.go
package note

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/order"
)

// Service handles order note business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new note service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents note creation data
type CreateRequest struct {
	Content  string `json:"content" binding:"required"`
	Internal *bool  `json:"internal"`
}

// Create attaches a note to an order. Notes default to internal.
func (s *Service) Create(orderID, authorID uint, req *CreateRequest) (*OrderNote, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("note content cannot be empty")
	}

	var count int64
	if err := s.db.Model(&order.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to verify order: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("order not found")
	}

	internal := true
	if req.Internal != nil {
		internal = *req.Internal
	}

	note := OrderNote{
		OrderID:  orderID,
		AuthorID: authorID,
		Content:  content,
		Internal: internal,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to create order note: %w", err)
	}
	return &note, nil
}

// ListForOrder lists notes on an order, oldest first. Internal notes
// are filtered out unless the caller may see them.
func (s *Service) ListForOrder(orderID uint, includeInternal bool) ([]OrderNote, error) {
	query := s.db.Where("order_id = ?", orderID)
	if !includeInternal {
		query = query.Where("internal = ?", false)
	}

	var notes []OrderNote
	if err := query.Order("created_at").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve order notes: %w", err)
	}
	return notes, nil
}

// Delete removes a note
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&OrderNote{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order note not found")
	}
	return nil
}

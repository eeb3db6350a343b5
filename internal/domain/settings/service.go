// internal/domain/settings/service.go
package settings

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
)

// Service handles site settings business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new settings service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// UpdateRequest represents settings update data; nil fields are left unchanged
type UpdateRequest struct {
	ContactEmail  *string `json:"contact_email"`
	ContactPhone  *string `json:"contact_phone"`
	Location      *string `json:"location"`
	BusinessHours *string `json:"business_hours"`
	ShippingInfo  *string `json:"shipping_info"`
}

// Get returns the site settings record, creating an empty one on first
// read so callers always see a record
func (s *Service) Get() (*SiteSettings, error) {
	var record SiteSettings
	err := s.db.First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = SiteSettings{}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to create site settings: %w", err)
		}
		return &record, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve site settings: %w", err)
	}
	return &record, nil
}

// Update applies partial updates to the site settings record
func (s *Service) Update(updatedBy uint, req *UpdateRequest) (*SiteSettings, error) {
	record, err := s.Get()
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = *req.ContactPhone
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.BusinessHours != nil {
		updates["business_hours"] = *req.BusinessHours
	}
	if req.ShippingInfo != nil {
		updates["shipping_info"] = *req.ShippingInfo
	}

	if len(updates) == 0 {
		return record, nil
	}
	updates["updated_by"] = updatedBy

	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update site settings: %w", err)
	}

	return s.Get()
}

// internal/domain/settings/entity.go
package settings

import (
	"time"
)

// SiteSettings represents the single site-wide settings record
type SiteSettings struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ContactEmail  string    `gorm:"size:255" json:"contact_email"`
	ContactPhone  string    `gorm:"size:50" json:"contact_phone"`
	Location      string    `gorm:"size:255" json:"location"`
	BusinessHours string    `gorm:"size:255" json:"business_hours"`
	ShippingInfo  string    `gorm:"type:text" json:"shipping_info"`
	UpdatedBy     uint      `json:"updated_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (SiteSettings) TableName() string {
	return "site_settings"
}

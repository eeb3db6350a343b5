// internal/domain/invitation/entity.go
package invitation

import (
	"time"

	"gorm.io/gorm"
)

// CodeType represents who issued an invitation code and what it grants
type CodeType string

const (
	// CodeTypeAdminUser is an admin-issued code granting a customer account
	CodeTypeAdminUser CodeType = "admin_user"
	// CodeTypeAdminPartner is an admin-issued code granting a partner account
	CodeTypeAdminPartner CodeType = "admin_partner"
	// CodeTypePartnerUser is a partner-issued referral code
	CodeTypePartnerUser CodeType = "partner_user"
)

// Valid reports whether the code type is one of the known types
func (t CodeType) Valid() bool {
	return t == CodeTypeAdminUser || t == CodeTypeAdminPartner || t == CodeTypePartnerUser
}

// GrantsPartnerRole reports whether accounts registered with this code
// type join as partners rather than customers
func (t CodeType) GrantsPartnerRole() bool {
	return t == CodeTypeAdminPartner || t == CodeTypePartnerUser
}

// Code represents an invitation code gating registration
type Code struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Code                string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Type                CodeType       `gorm:"not null;size:20" json:"type"`
	CreatedBy           uint           `gorm:"not null;index" json:"created_by"`
	PartnerID           *uint          `gorm:"index" json:"partner_id,omitempty"` // Issuing partner for referral codes
	MaxUses             int            `gorm:"not null;default:1" json:"max_uses"`
	UsedCount           int            `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt           *time.Time     `json:"expires_at,omitempty"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	DefaultDiscountRate int            `gorm:"default:0" json:"default_discount_rate"`
	Notes               string         `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Uses []Use `gorm:"foreignKey:CodeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"uses,omitempty"`
}

// Use records a single redemption of an invitation code
type Use struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CodeID   uint      `gorm:"not null;index" json:"code_id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	UserName string    `gorm:"size:255" json:"user_name"`
	UsedAt   time.Time `json:"used_at"`
}

// TableName overrides
func (Code) TableName() string { return "invitation_codes" }
func (Use) TableName() string  { return "invitation_code_uses" }

// IsExpired reports whether the code has passed its expiry date
func (c *Code) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IsExhausted reports whether the code has reached its usage cap
func (c *Code) IsExhausted() bool {
	return c.UsedCount >= c.MaxUses
}

// Redeemable reports whether the code can still be used
func (c *Code) Redeemable(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now) && !c.IsExhausted()
}

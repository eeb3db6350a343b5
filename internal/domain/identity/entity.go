// internal/domain/identity/entity.go
package identity

import (
	"strings"
	"time"

	"github.com/goldentier/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// Role represents the account role
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RolePartner || r == RoleAdmin
}

// User represents the user entity
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password       string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Name           string         `gorm:"not null;size:255" json:"name"`
	Role           Role           `gorm:"not null;default:'customer';size:20" json:"role"`
	DiscountRate   int            `gorm:"default:0" json:"discount_rate"` // Partner discount percentage
	Company        string         `gorm:"size:255" json:"company,omitempty"`
	Phone          string         `gorm:"size:20" json:"phone,omitempty"`
	InvitedBy      *uint          `gorm:"index" json:"invited_by,omitempty"`
	InvitationCode string         `gorm:"size:50" json:"invitation_code,omitempty"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to normalize the email before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPartner reports whether the user holds the partner role
func (u *User) IsPartner() bool {
	return u.Role == RolePartner
}

// Discount returns the pricing discount for this user. Only partners
// carry a discount; everyone else buys at list price.
func (u *User) Discount() pricing.Discount {
	if u == nil || u.Role != RolePartner {
		return pricing.None()
	}
	return pricing.Discount{Partner: true, Rate: u.DiscountRate}
}

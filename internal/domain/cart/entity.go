// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem represents a cart line stored in the database for
// authenticated users. Prices are not stored; they are resolved from
// the catalog on every read so a line can never go stale.
type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_cart_line,unique" json:"user_id"`
	ProductID  uint      `gorm:"not null;index:idx_cart_line,unique" json:"product_id"`
	VariantSKU string    `gorm:"size:100;default:'';index:idx_cart_line,unique" json:"variant_sku,omitempty"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a guest cart stored in Redis
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem represents a guest cart line
type SessionCartItem struct {
	ProductID  uint      `json:"product_id"`
	VariantSKU string    `json:"variant_sku,omitempty"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

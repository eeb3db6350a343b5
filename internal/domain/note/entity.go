// internal/domain/note/entity.go
package note

import (
	"time"

	"gorm.io/gorm"
)

// OrderNote represents a free-text note attached to an order. Internal
// notes are only visible to admins; external notes are shown to the
// order's owner as well.
type OrderNote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Internal  bool           `gorm:"default:true" json:"internal"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (OrderNote) TableName() string {
	return "order_notes"
}

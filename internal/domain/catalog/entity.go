// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog product
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SKU               string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string         `gorm:"type:text" json:"description"`
	ShortDesc         string         `gorm:"size:500" json:"short_description"`
	Category          string         `gorm:"not null;size:100;index" json:"category"`
	Purity            string         `gorm:"size:50" json:"purity"`
	Dosage            string         `gorm:"size:255" json:"dosage"`
	Price             int64          `gorm:"not null" json:"price"` // Price in minor currency units
	StockQuantity     int            `gorm:"default:0" json:"stock_quantity"`
	LowStockThreshold int            `gorm:"default:5" json:"low_stock_threshold"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	IsFeatured        bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductVariant represents a purchasable variant of a product
// (vial size, concentration). A zero price inherits the product price.
type ProductVariant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	SKU       string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Label     string         `gorm:"not null;size:255" json:"label"`
	Price     int64          `json:"price"` // Override product price if set
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (ProductVariant) TableName() string { return "product_variants" }

// Business methods for Product

// IsInStock reports whether the product has any stock left
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

// IsLowStock reports whether stock has fallen to the alert threshold
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// UnitPrice returns the list price for the given variant SKU. An empty
// SKU or an unknown variant falls back to the base product price.
func (p *Product) UnitPrice(variantSKU string) int64 {
	if variantSKU == "" {
		return p.Price
	}
	for _, v := range p.Variants {
		if v.SKU == variantSKU && v.Price > 0 {
			return v.Price
		}
	}
	return p.Price
}

// Variant returns the variant with the given SKU, or nil
func (p *Product) Variant(sku string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

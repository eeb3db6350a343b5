// internal/domain/catalog/service.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/goldentier/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	Search   string `form:"search"`
	InStock  bool   `form:"in_stock"`
}

// ListResponse represents a paginated product list
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	ShortDesc         string `json:"short_description"`
	Category          string `json:"category" binding:"required"`
	Purity            string `json:"purity"`
	Dosage            string `json:"dosage"`
	Price             int64  `json:"price" binding:"required,min=0"`
	StockQuantity     int    `json:"stock_quantity" binding:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	IsFeatured        bool   `json:"is_featured"`
}

// UpdateProductRequest represents product update data; nil fields are left unchanged
type UpdateProductRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	ShortDesc         *string `json:"short_description"`
	Category          *string `json:"category"`
	Purity            *string `json:"purity"`
	Dosage            *string `json:"dosage"`
	Price             *int64  `json:"price"`
	StockQuantity     *int    `json:"stock_quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	IsActive          *bool   `json:"is_active"`
	IsFeatured        *bool   `json:"is_featured"`
}

// List retrieves active products with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Variants").Where("is_active = ?", true)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.InStock {
		query = query.Where("stock_quantity > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get retrieves a single product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var product Product
	result := s.db.Preload("Variants").Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &product, nil
}

// GetBySKU retrieves a single product by SKU
func (s *Service) GetBySKU(sku string) (*Product, error) {
	var product Product
	result := s.db.Preload("Variants").Where("sku = ?", sku).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &product, nil
}

// Create creates a new product
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	// SKU must be unique
	var existing Product
	if err := s.db.Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with SKU %s already exists", req.SKU)
	}

	threshold := req.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}

	product := Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Slug:              slugify(req.Name),
		Description:       req.Description,
		ShortDesc:         req.ShortDesc,
		Category:          req.Category,
		Purity:            req.Purity,
		Dosage:            req.Dosage,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// Update applies partial updates to a product
func (s *Service) Update(id uint, req *UpdateProductRequest) (*Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Purity != nil {
		updates["purity"] = *req.Purity
	}
	if req.Dosage != nil {
		updates["dosage"] = *req.Dosage
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, fmt.Errorf("stock quantity cannot be negative")
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.Get(id)
}

// Delete soft-deletes a product
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// AdjustStock changes the stock quantity by delta, rejecting adjustments
// that would drive stock negative
func (s *Service) AdjustStock(id uint, delta int) (*Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	newQuantity := product.StockQuantity + delta
	if newQuantity < 0 {
		return nil, fmt.Errorf("stock adjustment would result in negative quantity. Available: %d", product.StockQuantity)
	}

	if err := s.db.Model(product).Update("stock_quantity", newQuantity).Error; err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	product.StockQuantity = newQuantity
	return product, nil
}

// LowStock lists active products at or below their low-stock threshold
func (s *Service) LowStock() ([]Product, error) {
	var products []Product
	err := s.db.
		Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}

// Categories returns the distinct categories of active products
func (s *Service) Categories() ([]string, error) {
	var categories []string
	err := s.db.Model(&Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// slugify converts a product name to a URL-safe slug
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}

// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/catalog"
	"github.com/goldentier/storefront-backend/internal/domain/pricing"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ItemResponse represents a cart line with resolved product details and
// current pricing
type ItemResponse struct {
	ProductID          uint             `json:"product_id"`
	VariantSKU         string           `json:"variant_sku,omitempty"`
	Quantity           int              `json:"quantity"`
	UnitPrice          int64            `json:"unit_price"`
	EffectiveUnitPrice int64            `json:"effective_unit_price"`
	LineTotal          int64            `json:"line_total"`
	Product            *catalog.Product `json:"product,omitempty"`
	AddedAt            time.Time        `json:"added_at"`
}

// Response represents a shopping cart with items and derived totals
type Response struct {
	SessionID string         `json:"session_id,omitempty"`
	UserID    *uint          `json:"user_id,omitempty"`
	IsOpen    bool           `json:"is_open"`
	Items     []ItemResponse `json:"items"`
	Totals    pricing.Totals `json:"totals"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity"`
}

// UpdateItemRequest represents a quantity update. Zero or negative
// quantity removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart retrieves the cart for a user or guest session, resolving
// current prices and recomputing totals. Totals are never persisted.
func (s *Service) GetCart(ctx context.Context, userID *uint, sessionID string, discount pricing.Discount) (*Response, error) {
	items, updatedAt, err := s.lines(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	responses, err := s.resolve(items, discount)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, len(responses))
	for i, item := range responses {
		lines[i] = pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}

	isOpen, err := s.visibility(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	return &Response{
		SessionID: sessionID,
		UserID:    userID,
		IsOpen:    isOpen,
		Items:     responses,
		Totals:    pricing.Quote(lines, discount),
		UpdatedAt: updatedAt,
	}, nil
}

// AddItem adds a product to the cart. Adding an existing
// (product, variant) pair increments its quantity instead of creating a
// second line. Stock is a hard limit.
func (s *Service) AddItem(ctx context.Context, userID *uint, sessionID string, discount pricing.Discount, req *AddItemRequest) (*Response, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.activeProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	if req.VariantSKU != "" {
		variant := product.Variant(req.VariantSKU)
		if variant == nil || !variant.IsActive {
			return nil, fmt.Errorf("product variant not found or inactive")
		}
	}

	current, err := s.lineQuantity(ctx, userID, sessionID, req.ProductID, req.VariantSKU)
	if err != nil {
		return nil, err
	}
	if current+quantity > product.StockQuantity {
		return nil, fmt.Errorf("insufficient stock. Available: %d", product.StockQuantity)
	}

	if userID != nil {
		err = s.addToUserCart(*userID, req.ProductID, req.VariantSKU, quantity)
	} else {
		err = s.addToGuestCart(ctx, sessionID, req.ProductID, req.VariantSKU, quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID, discount)
}

// UpdateItem sets the quantity of a cart line. A quantity of zero or
// less removes the line. Repeated identical calls are idempotent.
func (s *Service) UpdateItem(ctx context.Context, userID *uint, sessionID string, discount pricing.Discount, productID uint, variantSKU string, req *UpdateItemRequest) (*Response, error) {
	if req.Quantity > 0 {
		product, err := s.activeProduct(productID)
		if err != nil {
			return nil, err
		}
		if req.Quantity > product.StockQuantity {
			return nil, fmt.Errorf("insufficient stock. Available: %d", product.StockQuantity)
		}
	}

	var err error
	if userID != nil {
		err = s.updateUserCartItem(*userID, productID, variantSKU, req.Quantity)
	} else {
		err = s.updateGuestCartItem(ctx, sessionID, productID, variantSKU, req.Quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID, discount)
}

// RemoveItem removes a cart line. Removing an absent line is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID *uint, sessionID string, discount pricing.Discount, productID uint, variantSKU string) (*Response, error) {
	return s.UpdateItem(ctx, userID, sessionID, discount, productID, variantSKU, &UpdateItemRequest{Quantity: 0})
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}
	if s.redisClient == nil {
		return fmt.Errorf("guest cart storage unavailable")
	}
	return s.redisClient.Del(ctx, s.guestCartKey(sessionID)).Err()
}

// SetVisibility stores the open/closed presentation state of the cart.
// It carries no business meaning.
func (s *Service) SetVisibility(ctx context.Context, userID *uint, sessionID string, open bool) error {
	if s.redisClient == nil {
		return nil
	}
	value := "0"
	if open {
		value = "1"
	}
	return s.redisClient.Set(ctx, s.visibilityKey(userID, sessionID), value, s.config.Store.GuestCartTTL).Err()
}

// MergeGuestCart folds a guest session cart into a user's cart on
// login, then discards the session cart. Quantities of matching lines
// are added together.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	guestCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil
	}

	for _, item := range guestCart.Items {
		if err := s.addToUserCart(userID, item.ProductID, item.VariantSKU, item.Quantity); err != nil {
			return fmt.Errorf("failed to merge guest cart: %w", err)
		}
	}

	return s.ClearCart(ctx, nil, sessionID)
}

// Lines returns the raw cart lines for order assembly
func (s *Service) Lines(ctx context.Context, userID *uint, sessionID string) ([]SessionCartItem, error) {
	items, _, err := s.lines(ctx, userID, sessionID)
	return items, err
}

// Private helpers

func (s *Service) lines(ctx context.Context, userID *uint, sessionID string) ([]SessionCartItem, time.Time, error) {
	if userID != nil {
		var dbItems []CartItem
		if err := s.db.Where("user_id = ?", *userID).Order("created_at").Find(&dbItems).Error; err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to retrieve user cart: %w", err)
		}

		items := make([]SessionCartItem, len(dbItems))
		updatedAt := time.Now().UTC()
		for i, item := range dbItems {
			items[i] = SessionCartItem{
				ProductID:  item.ProductID,
				VariantSKU: item.VariantSKU,
				Quantity:   item.Quantity,
				AddedAt:    item.CreatedAt,
			}
			if i == 0 || item.UpdatedAt.After(updatedAt) {
				updatedAt = item.UpdatedAt
			}
		}
		return items, updatedAt, nil
	}

	guestCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return guestCart.Items, guestCart.UpdatedAt, nil
}

func (s *Service) resolve(items []SessionCartItem, discount pricing.Discount) ([]ItemResponse, error) {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		var product catalog.Product
		err := s.db.Preload("Variants").Where("id = ?", item.ProductID).First(&product).Error
		if err != nil {
			// Product removed since it was added; drop the line from view
			continue
		}

		unitPrice := product.UnitPrice(item.VariantSKU)
		effective := pricing.EffectiveUnitPrice(unitPrice, discount)

		responses = append(responses, ItemResponse{
			ProductID:          item.ProductID,
			VariantSKU:         item.VariantSKU,
			Quantity:           item.Quantity,
			UnitPrice:          unitPrice,
			EffectiveUnitPrice: effective,
			LineTotal:          effective * int64(item.Quantity),
			Product:            &product,
			AddedAt:            item.AddedAt,
		})
	}
	return responses, nil
}

func (s *Service) activeProduct(productID uint) (*catalog.Product, error) {
	var product catalog.Product
	result := s.db.Preload("Variants").Where("id = ? AND is_active = ?", productID, true).First(&product)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}
	return &product, nil
}

func (s *Service) lineQuantity(ctx context.Context, userID *uint, sessionID string, productID uint, variantSKU string) (int, error) {
	items, _, err := s.lines(ctx, userID, sessionID)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if item.ProductID == productID && item.VariantSKU == variantSKU {
			return item.Quantity, nil
		}
	}
	return 0, nil
}

func (s *Service) addToUserCart(userID, productID uint, variantSKU string, quantity int) error {
	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ? AND variant_sku = ?",
		userID, productID, variantSKU).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		newItem := CartItem{
			UserID:     userID,
			ProductID:  productID,
			VariantSKU: variantSKU,
			Quantity:   quantity,
		}
		return s.db.Create(&newItem).Error
	} else if result.Error != nil {
		return fmt.Errorf("failed to retrieve cart item: %w", result.Error)
	}

	existing.Quantity += quantity
	return s.db.Save(&existing).Error
}

func (s *Service) addToGuestCart(ctx context.Context, sessionID string, productID uint, variantSKU string, quantity int) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == productID && sessionCart.Items[i].VariantSKU == variantSKU {
			sessionCart.Items[i].Quantity += quantity
			found = true
			break
		}
	}

	if !found {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID:  productID,
			VariantSKU: variantSKU,
			Quantity:   quantity,
			AddedAt:    time.Now().UTC(),
		})
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(ctx, sessionID, sessionCart)
}

func (s *Service) updateUserCartItem(userID, productID uint, variantSKU string, quantity int) error {
	if quantity <= 0 {
		return s.db.Where("user_id = ? AND product_id = ? AND variant_sku = ?",
			userID, productID, variantSKU).Delete(&CartItem{}).Error
	}
	return s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ? AND variant_sku = ?", userID, productID, variantSKU).
		Update("quantity", quantity).Error
}

func (s *Service) updateGuestCartItem(ctx context.Context, sessionID string, productID uint, variantSKU string, quantity int) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}

	changed := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == productID && sessionCart.Items[i].VariantSKU == variantSKU {
			if quantity <= 0 {
				sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			} else {
				sessionCart.Items[i].Quantity = quantity
			}
			changed = true
			break
		}
	}

	// Removing an absent line is a no-op
	if !changed {
		return nil
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(ctx, sessionID, sessionCart)
}

func (s *Service) getGuestCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}
	if s.redisClient == nil {
		return nil, fmt.Errorf("guest cart storage unavailable")
	}

	data, err := s.redisClient.Get(ctx, s.guestCartKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve guest cart: %w", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &sessionCart, nil
}

func (s *Service) saveGuestCart(ctx context.Context, sessionID string, sessionCart *SessionCart) error {
	data, err := json.Marshal(sessionCart)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	return s.redisClient.Set(ctx, s.guestCartKey(sessionID), data, s.config.Store.GuestCartTTL).Err()
}

func (s *Service) visibility(ctx context.Context, userID *uint, sessionID string) (bool, error) {
	if s.redisClient == nil {
		return false, nil
	}
	value, err := s.redisClient.Get(ctx, s.visibilityKey(userID, sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to retrieve cart visibility: %w", err)
	}
	return value == "1", nil
}

func (s *Service) guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) visibilityKey(userID *uint, sessionID string) string {
	if userID != nil {
		return fmt.Sprintf("cart:open:user:%d", *userID)
	}
	return fmt.Sprintf("cart:open:session:%s", sessionID)
}

// internal/domain/order/service.go
package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/cart"
	"github.com/goldentier/storefront-backend/internal/domain/catalog"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    Status `form:"status"`
	UserID    uint   `form:"user_id"`
	PartnerID uint   `form:"partner_id"`
}

// ListResponse represents a paginated order list
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Create assembles an order from the user's cart. Line items are
// snapshotted at their effective prices, stock is decremented, and the
// cart is cleared only after the transaction commits so a failed
// checkout leaves the cart intact.
func (s *Service) Create(ctx context.Context, user *identity.User, sessionID string) (*Order, error) {
	if user == nil {
		return nil, fmt.Errorf("authentication required for checkout")
	}

	userID := user.ID
	cartResponse, err := s.cartService.GetCart(ctx, &userID, sessionID, user.Discount())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	userType := UserTypeCustomer
	var partnerID *uint
	if user.IsPartner() {
		userType = UserTypePartner
		partnerID = &userID
	} else if user.InvitedBy != nil {
		partnerID = user.InvitedBy
	}

	order := Order{
		UserID:         userID,
		CustomerName:   user.Name,
		Email:          user.Email,
		Status:         StatusPending,
		PaymentStatus:  PaymentStatusPaid,
		Subtotal:       cartResponse.Totals.Subtotal,
		DiscountAmount: cartResponse.Totals.DiscountAmount,
		Total:          cartResponse.Totals.Total,
		UserType:       userType,
		PartnerID:      partnerID,
		Currency:       "USD",
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.generateOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range cartResponse.Items {
			if item.Product == nil {
				return fmt.Errorf("product %d no longer available", item.ProductID)
			}

			orderItem := OrderItem{
				OrderID:    order.ID,
				ProductID:  item.ProductID,
				SKU:        item.Product.SKU,
				VariantSKU: item.VariantSKU,
				Name:       item.Product.Name,
				Quantity:   item.Quantity,
				ListPrice:  item.UnitPrice,
				UnitPrice:  item.EffectiveUnitPrice,
				TotalPrice: item.LineTotal,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			if err := s.reserveStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		history := StatusHistory{
			OrderID:   order.ID,
			Status:    StatusPending,
			Comment:   "Order placed",
			CreatedBy: userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The cart survives checkout failures; clear only on success
	if err := s.cartService.ClearCart(ctx, &userID, sessionID); err != nil {
		return nil, fmt.Errorf("order %s created but cart not cleared: %w", order.OrderNumber, err)
	}

	return s.Get(order.ID)
}

// Get retrieves a single order by ID
func (s *Service) Get(id uint) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &order, nil
}

// GetByNumber retrieves a single order by order number
func (s *Service) GetByNumber(orderNumber string) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &order, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{}).Preload("Items")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.PartnerID > 0 {
		query = query.Where("partner_id = ?", req.PartnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// ListForUser retrieves orders belonging to a user
func (s *Service) ListForUser(userID uint, page, limit int) (*ListResponse, error) {
	return s.List(&ListRequest{Page: page, Limit: limit, UserID: userID})
}

// UpdateStatus advances an order along the lifecycle. Only forward
// transitions are allowed; cancellation goes through Cancel.
func (s *Service) UpdateStatus(orderID uint, status Status, comment string, updatedBy uint) (*Order, error) {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("order not found")
	}

	if !isValidTransition(order.Status, status) {
		return nil, fmt.Errorf("invalid status transition from %s to %s", order.Status, status)
	}

	updates := map[string]interface{}{"status": status}
	now := time.Now().UTC()
	switch status {
	case StatusProcessing:
		updates["processed_at"] = now
	case StatusShipped:
		updates["shipped_at"] = now
	case StatusDelivered:
		updates["delivered_at"] = now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := StatusHistory{
			OrderID:   orderID,
			Status:    status,
			Comment:   comment,
			CreatedBy: updatedBy,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(orderID)
}

// Cancel cancels an order and restores the reserved stock
func (s *Service) Cancel(orderID uint, reason string, cancelledBy uint) (*Order, error) {
	var order Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("order not found")
	}

	if !order.CanBeCancelled() {
		return nil, fmt.Errorf("order cannot be cancelled in current status: %s", order.Status)
	}

	now := time.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			err := tx.Model(&catalog.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		updates := map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		comment := "Order cancelled"
		if reason != "" {
			comment = fmt.Sprintf("Order cancelled: %s", reason)
		}
		history := StatusHistory{
			OrderID:   orderID,
			Status:    StatusCancelled,
			Comment:   comment,
			CreatedBy: cancelledBy,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(orderID)
}

// Private helpers

// isValidTransition enforces the forward-only lifecycle. Cancellation
// is reachable from any non-terminal state.
func isValidTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from != StatusDelivered && from != StatusCancelled
	}

	fromRank, fromOK := statusRank[from]
	toRank, toOK := statusRank[to]
	if !fromOK || !toOK {
		return false
	}
	return toRank == fromRank+1
}

// generateOrderNumber builds a random ORD-XXXX-XXXX identifier,
// retrying on the rare collision
func (s *Service) generateOrderNumber(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		a, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}
		b, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}

		number := fmt.Sprintf("ORD-%04d-%04d", a.Int64(), b.Int64())

		var count int64
		if err := tx.Model(&Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique order number")
}

// reserveStock decrements product stock, guarding against oversell
// under concurrent checkouts
func (s *Service) reserveStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&catalog.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("insufficient stock for product %d", productID)
	}
	return nil
}

// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// UserType tags an order with the purchaser's pricing category
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypePartner  UserType = "partner"
)

// Order represents a placed order. Line items snapshot name and price
// at checkout time, so historical orders stay immutable when the
// catalog changes.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	CustomerName  string        `gorm:"not null;size:255" json:"customer_name"`
	Email         string        `gorm:"not null;size:255" json:"email"`
	Status        Status        `gorm:"not null;default:'pending';size:20" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'paid';size:20" json:"payment_status"`

	// Financial information, in minor currency units
	Subtotal       int64 `gorm:"not null" json:"subtotal"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	Total          int64 `gorm:"not null" json:"total"`

	// Partner attribution. Self-attributed when the purchaser is a
	// partner, or the referring partner for invited customers.
	UserType  UserType `gorm:"not null;default:'customer';size:20" json:"user_type"`
	PartnerID *uint    `gorm:"index" json:"partner_id,omitempty"`

	Currency string `gorm:"size:3;default:'USD'" json:"currency"`

	// Timestamps
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	ShippedAt   *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents a snapshotted order line
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	SKU        string    `gorm:"not null;size:100" json:"sku"`
	VariantSKU string    `gorm:"size:100" json:"variant_sku,omitempty"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	ListPrice  int64     `gorm:"not null" json:"list_price"`  // Per unit, before discount
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`  // Per unit, as charged
	TotalPrice int64     `gorm:"not null" json:"total_price"` // UnitPrice * Quantity
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null;size:20" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (OrderItem) TableName() string     { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// IsTerminal reports whether the order has reached a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// CanBeCancelled reports whether the order may still be cancelled.
// Cancellation is reachable from any non-terminal state.
func (o *Order) CanBeCancelled() bool {
	return !o.IsTerminal()
}

// TrackingStep represents one entry of the order progress checklist
type TrackingStep struct {
	Label     string     `json:"label"`
	Status    Status     `json:"status"`
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// statusRank orders the forward progression of statuses
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// TrackingSteps derives the four-step progress checklist. A step is
// completed once the order status is at or beyond it. Cancelled orders
// have no checklist.
func (o *Order) TrackingSteps() []TrackingStep {
	if o.Status == StatusCancelled {
		return nil
	}

	rank, ok := statusRank[o.Status]
	if !ok {
		return nil
	}

	placedAt := o.CreatedAt
	steps := []TrackingStep{
		{Label: "Order Placed", Status: StatusPending, Timestamp: &placedAt},
		{Label: "Processing", Status: StatusProcessing, Timestamp: o.ProcessedAt},
		{Label: "Shipped", Status: StatusShipped, Timestamp: o.ShippedAt},
		{Label: "Delivered", Status: StatusDelivered, Timestamp: o.DeliveredAt},
	}
	for i := range steps {
		steps[i].Completed = statusRank[steps[i].Status] <= rank
	}
	return steps
}

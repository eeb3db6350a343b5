package order

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/cart"
	"github.com/goldentier/storefront-backend/internal/domain/catalog"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
	"github.com/goldentier/storefront-backend/internal/domain/pricing"
)

func setupService(t *testing.T) (*Service, *cart.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{}, &catalog.ProductVariant{},
		&cart.CartItem{}, &Order{}, &OrderItem{}, &StatusHistory{},
	))

	cfg := &config.Config{}
	cartService := cart.NewService(db, nil, cfg)
	return NewService(db, cfg, cartService), cartService
}

func seedProduct(t *testing.T, svc *Service, sku string, price int64, stock int) *catalog.Product {
	t.Helper()
	product := catalog.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Slug:          "product-" + sku,
		Category:      "peptides",
		Price:         price,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, svc.db.Create(&product).Error)
	return &product
}

func testCustomer() *identity.User {
	return &identity.User{ID: 1, Name: "Jane Doe", Email: "jane@example.com", Role: identity.RoleCustomer}
}

func testPartner() *identity.User {
	return &identity.User{ID: 2, Name: "Partner", Email: "partner@example.com", Role: identity.RolePartner, DiscountRate: 20}
}

func fillCart(t *testing.T, cartService *cart.Service, user *identity.User, productID uint, quantity int) {
	t.Helper()
	userID := user.ID
	_, err := cartService.AddItem(context.Background(), &userID, "", user.Discount(), &cart.AddItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func TestCreateSnapshotsCartAndClearsIt(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "BPC-157", 4999, 10)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 2)

	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{4}-\d{4}$`), order.OrderNumber)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, UserTypeCustomer, order.UserType)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	assert.Equal(t, int64(9998), order.Total)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "BPC-157", order.Items[0].SKU)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(4999), order.Items[0].UnitPrice)

	// Cart is cleared on success
	userID := user.ID
	cartResp, err := cartService.GetCart(ctx, &userID, "", pricing.None())
	require.NoError(t, err)
	assert.Empty(t, cartResp.Items)

	// Stock was decremented
	var reloaded catalog.Product
	require.NoError(t, svc.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 8, reloaded.StockQuantity)
}

func TestCreatePartnerOrderAppliesDiscountAndAttribution(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "TB-500", 10000, 10)
	user := testPartner()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 1)

	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	assert.Equal(t, UserTypePartner, order.UserType)
	require.NotNil(t, order.PartnerID)
	assert.Equal(t, user.ID, *order.PartnerID)
	assert.Equal(t, int64(10000), order.Subtotal)
	assert.Equal(t, int64(2000), order.DiscountAmount)
	assert.Equal(t, int64(8000), order.Total)
	assert.Equal(t, int64(10000), order.Items[0].ListPrice)
	assert.Equal(t, int64(8000), order.Items[0].UnitPrice)
}

func TestCreateAttributesInvitedCustomerToPartner(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "ATTR", 1000, 10)
	partnerID := uint(9)
	user := &identity.User{ID: 3, Name: "Invited", Email: "i@example.com", Role: identity.RoleCustomer, InvitedBy: &partnerID}
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 1)

	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	assert.Equal(t, UserTypeCustomer, order.UserType)
	require.NotNil(t, order.PartnerID)
	assert.Equal(t, partnerID, *order.PartnerID)
}

func TestCreateEmptyCartFails(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), testCustomer(), "")
	assert.Error(t, err)
}

func TestCreateRequiresIdentity(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestCreateFailureLeavesCartIntact(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "DRAIN", 1000, 5)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 5)

	// Stock drops below the cart quantity between add and checkout
	require.NoError(t, svc.db.Model(product).Update("stock_quantity", 3).Error)

	_, err := svc.Create(ctx, user, "")
	require.Error(t, err)

	userID := user.ID
	cartResp, err := cartService.GetCart(ctx, &userID, "", pricing.None())
	require.NoError(t, err)
	require.Len(t, cartResp.Items, 1)
	assert.Equal(t, 5, cartResp.Items[0].Quantity)

	// No half-written order remains
	var count int64
	require.NoError(t, svc.db.Model(&Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "FLOW", 1000, 10)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 1)
	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	// Skipping a step is rejected
	_, err = svc.UpdateStatus(order.ID, StatusShipped, "", 1)
	assert.Error(t, err)

	order, err = svc.UpdateStatus(order.ID, StatusProcessing, "packed", 1)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, order.Status)
	assert.NotNil(t, order.ProcessedAt)

	order, err = svc.UpdateStatus(order.ID, StatusShipped, "", 1)
	require.NoError(t, err)
	order, err = svc.UpdateStatus(order.ID, StatusDelivered, "", 1)
	require.NoError(t, err)

	// Delivered is terminal
	_, err = svc.UpdateStatus(order.ID, StatusProcessing, "", 1)
	assert.Error(t, err)
	_, err = svc.Cancel(order.ID, "too late", 1)
	assert.Error(t, err)
}

func TestCancelRestoresStock(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "CXL", 1000, 10)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 4)
	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	var afterOrder catalog.Product
	require.NoError(t, svc.db.First(&afterOrder, product.ID).Error)
	require.Equal(t, 6, afterOrder.StockQuantity)

	cancelled, err := svc.Cancel(order.ID, "changed my mind", user.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	var afterCancel catalog.Product
	require.NoError(t, svc.db.First(&afterCancel, product.ID).Error)
	assert.Equal(t, 10, afterCancel.StockQuantity)

	// Cancelling twice fails
	_, err = svc.Cancel(order.ID, "again", user.ID)
	assert.Error(t, err)
}

func TestCancelReachableFromShipped(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "SHIPCXL", 1000, 10)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 1)
	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, StatusProcessing, "", 1)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(order.ID, StatusShipped, "", 1)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(order.ID, "lost in transit", 1)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestTrackingSteps(t *testing.T) {
	order := &Order{Status: StatusShipped}

	steps := order.TrackingSteps()
	require.Len(t, steps, 4)
	assert.True(t, steps[0].Completed)
	assert.True(t, steps[1].Completed)
	assert.True(t, steps[2].Completed)
	assert.False(t, steps[3].Completed)
	assert.Equal(t, "Order Placed", steps[0].Label)
}

func TestTrackingStepsSuppressedWhenCancelled(t *testing.T) {
	order := &Order{Status: StatusCancelled}
	assert.Nil(t, order.TrackingSteps())
}

func TestListFiltersByUserAndStatus(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "LIST", 1000, 100)
	ctx := context.Background()

	customer := testCustomer()
	partner := testPartner()

	fillCart(t, cartService, customer, product.ID, 1)
	first, err := svc.Create(ctx, customer, "")
	require.NoError(t, err)

	fillCart(t, cartService, partner, product.ID, 1)
	_, err = svc.Create(ctx, partner, "")
	require.NoError(t, err)

	byUser, err := svc.ListForUser(customer.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, byUser.Orders, 1)
	assert.Equal(t, first.OrderNumber, byUser.Orders[0].OrderNumber)

	_, err = svc.UpdateStatus(first.ID, StatusProcessing, "", 1)
	require.NoError(t, err)

	processing, err := svc.List(&ListRequest{Status: StatusProcessing})
	require.NoError(t, err)
	assert.Len(t, processing.Orders, 1)

	// Partner attribution filter
	byPartner, err := svc.List(&ListRequest{PartnerID: partner.ID})
	require.NoError(t, err)
	assert.Len(t, byPartner.Orders, 1)
}

func TestGetByNumber(t *testing.T) {
	svc, cartService := setupService(t)
	product := seedProduct(t, svc, "NUM", 1000, 10)
	user := testCustomer()
	ctx := context.Background()

	fillCart(t, cartService, user, product.ID, 1)
	order, err := svc.Create(ctx, user, "")
	require.NoError(t, err)

	found, err := svc.GetByNumber(order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.GetByNumber("ORD-0000-0000")
	assert.Error(t, err)
}

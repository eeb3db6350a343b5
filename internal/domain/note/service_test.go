package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/order"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&order.Order{}, &order.OrderItem{}, &order.StatusHistory{}, &OrderNote{}))

	return NewService(db, &config.Config{})
}

func seedOrder(t *testing.T, svc *Service) *order.Order {
	t.Helper()
	o := order.Order{
		OrderNumber:  "ORD-1234-5678",
		UserID:       1,
		CustomerName: "Jane Doe",
		Email:        "jane@example.com",
		Status:       order.StatusPending,
		Subtotal:     1000,
		Total:        1000,
	}
	require.NoError(t, svc.db.Create(&o).Error)
	return &o
}

func boolPtr(b bool) *bool { return &b }

func TestCreateDefaultsToInternal(t *testing.T) {
	svc := setupService(t)
	o := seedOrder(t, svc)

	created, err := svc.Create(o.ID, 1, &CreateRequest{Content: "check payment reference"})
	require.NoError(t, err)
	assert.True(t, created.Internal)
}

func TestCreateRejectsUnknownOrder(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(999, 1, &CreateRequest{Content: "orphan"})
	assert.Error(t, err)
}

func TestCreateRejectsBlankContent(t *testing.T) {
	svc := setupService(t)
	o := seedOrder(t, svc)

	_, err := svc.Create(o.ID, 1, &CreateRequest{Content: "   "})
	assert.Error(t, err)
}

func TestListFiltersInternalNotes(t *testing.T) {
	svc := setupService(t)
	o := seedOrder(t, svc)

	_, err := svc.Create(o.ID, 1, &CreateRequest{Content: "internal only"})
	require.NoError(t, err)
	_, err = svc.Create(o.ID, 1, &CreateRequest{Content: "visible to customer", Internal: boolPtr(false)})
	require.NoError(t, err)

	all, err := svc.ListForOrder(o.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	external, err := svc.ListForOrder(o.ID, false)
	require.NoError(t, err)
	require.Len(t, external, 1)
	assert.Equal(t, "visible to customer", external[0].Content)
}

func TestDelete(t *testing.T) {
	svc := setupService(t)
	o := seedOrder(t, svc)

	created, err := svc.Create(o.ID, 1, &CreateRequest{Content: "temp"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))
	assert.Error(t, svc.Delete(created.ID))
}

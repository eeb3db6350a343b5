package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/catalog"
	"github.com/goldentier/storefront-backend/internal/domain/pricing"
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

	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &catalog.ProductVariant{}, &CartItem{}))

	cfg := &config.Config{}
	return NewService(db, nil, cfg)
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

func userPtr(id uint) *uint { return &id }

func TestAddItemCreatesLine(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "BPC-157", 4999, 10)
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
	assert.Equal(t, int64(4999), resp.Items[0].UnitPrice)
	assert.Equal(t, int64(4999), resp.Totals.Total)
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "TB-500", 6999, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)
	resp, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	// One line with quantity 2, not two lines
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, 2, resp.Totals.TotalQuantity)
}

func TestAddItemDistinctVariantsAreSeparateLines(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "GHK-CU", 3999, 10)
	variant := catalog.ProductVariant{
		ProductID: product.ID,
		SKU:       "GHK-CU-10MG",
		Label:     "10mg vial",
		Price:     5999,
		IsActive:  true,
	}
	require.NoError(t, svc.db.Create(&variant).Error)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)
	resp, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID, VariantSKU: "GHK-CU-10MG"})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(3999+5999), resp.Totals.Subtotal)
}

func TestAddItemEnforcesStock(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "SCARCE", 1000, 2)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	assert.Error(t, err)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: 999})
	assert.Error(t, err)
}

func TestUpdateItemZeroRemovesLine(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "CJC-1295", 8999, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	resp, err := svc.UpdateItem(ctx, userPtr(1), "", pricing.None(), product.ID, "", &UpdateItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, int64(0), resp.Totals.Total)

	// Removing the already-removed line is a no-op, not an error
	resp, err = svc.RemoveItem(ctx, userPtr(1), "", pricing.None(), product.ID, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestUpdateItemSetsQuantity(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "IPAM", 5500, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	resp, err := svc.UpdateItem(ctx, userPtr(1), "", pricing.None(), product.ID, "", &UpdateItemRequest{Quantity: 4})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].Quantity)

	// Stock cap applies to direct quantity updates too
	_, err = svc.UpdateItem(ctx, userPtr(1), "", pricing.None(), product.ID, "", &UpdateItemRequest{Quantity: 11})
	assert.Error(t, err)
}

func TestPartnerDiscountReflectedInTotals(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "DISC", 10000, 10)
	ctx := context.Background()
	discount := pricing.Discount{Partner: true, Rate: 20}

	resp, err := svc.AddItem(ctx, userPtr(1), "", discount, &AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(8000), resp.Items[0].EffectiveUnitPrice)
	assert.Equal(t, int64(20000), resp.Totals.Subtotal)
	assert.Equal(t, int64(4000), resp.Totals.DiscountAmount)
	assert.Equal(t, int64(16000), resp.Totals.Total)
}

func TestPriceChangeReflectedOnRead(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "REPRICE", 1000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	require.NoError(t, svc.db.Model(product).Update("price", 1500).Error)

	// Totals are derived from the catalog on read, never stored
	resp, err := svc.GetCart(ctx, userPtr(1), "", pricing.None())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), resp.Items[0].UnitPrice)
	assert.Equal(t, int64(1500), resp.Totals.Total)
}

func TestClearCart(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "CLR", 1000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, userPtr(1), ""))

	resp, err := svc.GetCart(ctx, userPtr(1), "", pricing.None())
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc := setupService(t)
	product := seedProduct(t, svc, "ISO", 1000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userPtr(1), "", pricing.None(), &AddItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	resp, err := svc.GetCart(ctx, userPtr(2), "", pricing.None())
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

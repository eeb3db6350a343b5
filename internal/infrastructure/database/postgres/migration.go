// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/domain/cart"
	"github.com/goldentier/storefront-backend/internal/domain/catalog"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
	"github.com/goldentier/storefront-backend/internal/domain/note"
	"github.com/goldentier/storefront-backend/internal/domain/order"
	"github.com/goldentier/storefront-backend/internal/domain/settings"
)

// Migration handles database schema management
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration runner
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{db: db, logger: logger}
}

// RunAutoMigrations migrates every model in dependency order
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		// Identity domain
		&identity.User{},
		&invitation.Code{},
		&invitation.Use{},

		// Catalog domain
		&catalog.Product{},
		&catalog.ProductVariant{},

		// Cart domain
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
		&note.OrderNote{},

		// Site settings
		&settings.SiteSettings{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for common query paths
func (m *Migration) CreateIndexes() error {
	m.logger.Info("Creating additional database indexes")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_partner ON orders(partner_id)",

		// Invitation indexes
		"CREATE INDEX IF NOT EXISTS idx_invitation_codes_active ON invitation_codes(is_active, type)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	m.logger.Info("Database indexes created")
	return nil
}

// SeedInitialData seeds development data: an admin account, a starter
// invitation code and a few catalog products
func (m *Migration) SeedInitialData() error {
	if err := m.seedAdminUser(); err != nil {
		return err
	}
	if err := m.seedInvitationCodes(); err != nil {
		return err
	}
	if err := m.seedProducts(); err != nil {
		return err
	}
	if err := m.seedSiteSettings(); err != nil {
		return err
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing identity.User
	result := m.db.Where("email = ?", "admin@goldentier.example").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := identity.User{
		Email:    "admin@goldentier.example",
		Password: string(hashedPassword),
		Name:     "Store Admin",
		Role:     identity.RoleAdmin,
		IsActive: true,
	}
	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.logger.WithField("email", adminUser.Email).Info("Seeded admin user")
	return nil
}

func (m *Migration) seedInvitationCodes() error {
	var count int64
	if err := m.db.Model(&invitation.Code{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count invitation codes: %w", err)
	}
	if count > 0 {
		return nil
	}

	var admin identity.User
	if err := m.db.Where("role = ?", identity.RoleAdmin).First(&admin).Error; err != nil {
		return fmt.Errorf("failed to find admin for seeding: %w", err)
	}

	codes := []invitation.Code{
		{
			Code:      "GTWELCOME1",
			Type:      invitation.CodeTypeAdminUser,
			CreatedBy: admin.ID,
			MaxUses:   100,
			IsActive:  true,
			Notes:     "Development customer onboarding code",
		},
		{
			Code:                "GTPARTNER1",
			Type:                invitation.CodeTypeAdminPartner,
			CreatedBy:           admin.ID,
			MaxUses:             10,
			IsActive:            true,
			DefaultDiscountRate: 20,
			Notes:               "Development partner onboarding code",
		},
	}

	for _, code := range codes {
		if err := m.db.Create(&code).Error; err != nil {
			return fmt.Errorf("failed to seed invitation code: %w", err)
		}
	}

	m.logger.Info("Seeded invitation codes")
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := []catalog.Product{
		{
			SKU:           "BPC-157",
			Name:          "BPC-157",
			Slug:          "bpc-157",
			ShortDesc:     "Body protection compound, 5mg vial",
			Category:      "Recovery",
			Purity:        "99.8%",
			Dosage:        "5mg",
			Price:         4999,
			StockQuantity: 50,
			IsActive:      true,
			IsFeatured:    true,
			Variants: []catalog.ProductVariant{
				{SKU: "BPC-157-10MG", Label: "10mg vial", Price: 8999, IsActive: true},
			},
		},
		{
			SKU:           "TB-500",
			Name:          "TB-500",
			Slug:          "tb-500",
			ShortDesc:     "Thymosin beta-4 fragment, 5mg vial",
			Category:      "Recovery",
			Purity:        "99.5%",
			Dosage:        "5mg",
			Price:         6999,
			StockQuantity: 40,
			IsActive:      true,
		},
		{
			SKU:           "GHK-CU",
			Name:          "GHK-Cu",
			Slug:          "ghk-cu",
			ShortDesc:     "Copper peptide complex, 50mg vial",
			Category:      "Cosmetic",
			Purity:        "99.0%",
			Dosage:        "50mg",
			Price:         3999,
			StockQuantity: 60,
			IsActive:      true,
		},
		{
			SKU:           "CJC-1295",
			Name:          "CJC-1295",
			Slug:          "cjc-1295",
			ShortDesc:     "Growth hormone releasing analogue, 2mg vial",
			Category:      "Performance",
			Purity:        "99.3%",
			Dosage:        "2mg",
			Price:         8999,
			StockQuantity: 30,
			IsActive:      true,
		},
	}

	for _, product := range products {
		if err := m.db.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.SKU, err)
		}
	}

	m.logger.WithField("count", len(products)).Info("Seeded catalog products")
	return nil
}

func (m *Migration) seedSiteSettings() error {
	var count int64
	if err := m.db.Model(&settings.SiteSettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count site settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	record := settings.SiteSettings{
		ContactEmail:  "support@goldentier.example",
		ContactPhone:  "+1 (555) 010-0199",
		Location:      "Austin, TX",
		BusinessHours: "Mon-Fri 9am-5pm CT",
		ShippingInfo:  "Orders ship within 2 business days. Cold-chain packaging included.",
	}
	if err := m.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}

	m.logger.Info("Seeded site settings")
	return nil
}

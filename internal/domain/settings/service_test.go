package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goldentier/storefront-backend/internal/config"
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

	require.NoError(t, db.AutoMigrate(&SiteSettings{}))

	return NewService(db, &config.Config{})
}

func strPtr(s string) *string { return &s }

func TestGetCreatesRecordOnFirstRead(t *testing.T) {
	svc := setupService(t)

	record, err := svc.Get()
	require.NoError(t, err)
	assert.NotZero(t, record.ID)

	again, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc := setupService(t)

	record, err := svc.Update(1, &UpdateRequest{
		ContactEmail: strPtr("support@goldentier.example"),
		Location:     strPtr("Austin, TX"),
	})
	require.NoError(t, err)
	assert.Equal(t, "support@goldentier.example", record.ContactEmail)
	assert.Equal(t, "Austin, TX", record.Location)
	assert.Equal(t, uint(1), record.UpdatedBy)

	// Untouched fields survive a later partial update
	record, err = svc.Update(2, &UpdateRequest{
		BusinessHours: strPtr("Mon-Fri 9-5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "support@goldentier.example", record.ContactEmail)
	assert.Equal(t, "Mon-Fri 9-5", record.BusinessHours)
	assert.Equal(t, uint(2), record.UpdatedBy)
}

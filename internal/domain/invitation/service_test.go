package invitation

import (
	"strings"
	"testing"
	"time"

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

	require.NoError(t, db.AutoMigrate(&Code{}, &Use{}))

	cfg := &config.Config{}
	cfg.Store.InvitationCodePrefix = "GT"
	cfg.Store.PartnerDefaultDiscount = 20

	return NewService(db, cfg)
}

func TestCreateGeneratesPrefixedCode(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code.Code, "GT"))
	assert.Len(t, code.Code, 10)
	assert.Equal(t, 1, code.MaxUses)
	assert.True(t, code.IsActive)
	assert.Nil(t, code.PartnerID)
}

func TestCreatePartnerReferralRecordsIssuer(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(42, false, &CreateRequest{Type: CodeTypePartnerUser, MaxUses: 10})
	require.NoError(t, err)

	require.NotNil(t, code.PartnerID)
	assert.Equal(t, uint(42), *code.PartnerID)
	assert.Equal(t, 10, code.MaxUses)
}

func TestCreateRejectsPartnerIssuingAdminCodes(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(42, false, &CreateRequest{Type: CodeTypeAdminPartner})
	assert.Error(t, err)
}

func TestCreateRejectsInvalidType(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(1, true, &CreateRequest{Type: "something_else"})
	assert.Error(t, err)
}

func TestValidateUnknownCode(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Validate("GTNOPE1234")
	assert.Error(t, err)
}

func TestValidateRejectsExpiredCode(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, svc.db.Model(code).Update("expires_at", past).Error)

	_, err = svc.Validate(code.Code)
	assert.Error(t, err)
}

func TestConsumeIncrementsUsageAndLogs(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser, MaxUses: 2})
	require.NoError(t, err)

	consumed, err := svc.Consume(nil, code.Code, 7, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 1, consumed.UsedCount)

	var uses []Use
	require.NoError(t, svc.db.Where("code_id = ?", code.ID).Find(&uses).Error)
	require.Len(t, uses, 1)
	assert.Equal(t, uint(7), uses[0].UserID)
	assert.Equal(t, "Jane Doe", uses[0].UserName)
}

func TestConsumeExhaustedCodeFails(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser, MaxUses: 1})
	require.NoError(t, err)

	_, err = svc.Consume(nil, code.Code, 7, "First")
	require.NoError(t, err)

	_, err = svc.Consume(nil, code.Code, 8, "Second")
	assert.Error(t, err)
}

func TestConsumeDeactivatedCodeFails(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(code.ID, 1, true))

	_, err = svc.Consume(nil, code.Code, 7, "Late")
	assert.Error(t, err)
}

func TestDeactivateOwnership(t *testing.T) {
	svc := setupService(t)

	code, err := svc.Create(42, false, &CreateRequest{Type: CodeTypePartnerUser})
	require.NoError(t, err)

	// Another partner cannot deactivate someone else's code
	assert.Error(t, svc.Deactivate(code.ID, 43, false))

	// Admin always can
	assert.NoError(t, svc.Deactivate(code.ID, 1, true))
}

func TestListByCreator(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(42, false, &CreateRequest{Type: CodeTypePartnerUser})
	require.NoError(t, err)
	_, err = svc.Create(42, false, &CreateRequest{Type: CodeTypePartnerUser})
	require.NoError(t, err)
	_, err = svc.Create(1, true, &CreateRequest{Type: CodeTypeAdminUser})
	require.NoError(t, err)

	codes, err := svc.ListByCreator(42)
	require.NoError(t, err)
	assert.Len(t, codes, 2)
}

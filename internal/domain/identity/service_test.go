package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
)

func setupService(t *testing.T) (*Service, *invitation.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}, &invitation.Code{}, &invitation.Use{}))

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = 4
	cfg.Store.InvitationCodePrefix = "GT"
	cfg.Store.PartnerDefaultDiscount = 20

	invitations := invitation.NewService(db, cfg)
	return NewService(db, cfg, invitations), invitations
}

func issueCode(t *testing.T, invitations *invitation.Service, codeType invitation.CodeType, rate int) *invitation.Code {
	t.Helper()
	code, err := invitations.Create(1, true, &invitation.CreateRequest{
		Type:                codeType,
		MaxUses:             5,
		DefaultDiscountRate: rate,
	})
	require.NoError(t, err)
	return code
}

func TestRegisterCustomerWithAdminCode(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "Jane@Example.com",
		Password:       "Str0ngPass",
		Name:           "Jane Doe",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, RoleCustomer, resp.User.Role)
	assert.Equal(t, 0, resp.User.DiscountRate)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// Code usage is recorded
	validated, err := invitations.Validate(code.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, validated.UsedCount)
}

func TestRegisterPartnerInheritsCodeDiscount(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminPartner, 25)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "partner@example.com",
		Password:       "Str0ngPass",
		Name:           "Partner One",
		InvitationCode: code.Code,
		Company:        "Peptide Labs",
	})
	require.NoError(t, err)

	assert.Equal(t, RolePartner, resp.User.Role)
	assert.Equal(t, 25, resp.User.DiscountRate)
}

func TestRegisterPartnerFallsBackToDefaultDiscount(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminPartner, 0)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "partner2@example.com",
		Password:       "Str0ngPass",
		Name:           "Partner Two",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, resp.User.DiscountRate)
}

func TestRegisterRejectsInvalidCode(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Register(&RegisterRequest{
		Email:          "nobody@example.com",
		Password:       "Str0ngPass",
		Name:           "Nobody",
		InvitationCode: "GTBOGUS123",
	})
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	req := &RegisterRequest{
		Email:          "dup@example.com",
		Password:       "Str0ngPass",
		Name:           "First",
		InvitationCode: code.Code,
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	_, err := svc.Register(&RegisterRequest{
		Email:          "login@example.com",
		Password:       "Str0ngPass",
		Name:           "Login User",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "login@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.LastLoginAt)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	_, err = svc.Login(&LoginRequest{Email: "login@example.com", Password: "WrongPass1"})
	assert.Error(t, err)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "gone@example.com",
		Password:       "Str0ngPass",
		Name:           "Gone",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	_, err = svc.SetActive(resp.User.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "gone@example.com", Password: "Str0ngPass"})
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "refresh@example.com",
		Password:       "Str0ngPass",
		Name:           "Refresh",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// An access token cannot be used as a refresh token
	_, err = svc.RefreshToken(resp.Tokens.AccessToken)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, invitations := setupService(t)
	code := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)

	resp, err := svc.Register(&RegisterRequest{
		Email:          "pw@example.com",
		Password:       "Str0ngPass",
		Name:           "PW User",
		InvitationCode: code.Code,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "WrongPass1",
		NewPassword:     "NewStr0ngPass",
	})
	assert.Error(t, err)

	err = svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "Str0ngPass",
		NewPassword:     "NewStr0ngPass",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "pw@example.com", Password: "NewStr0ngPass"})
	assert.NoError(t, err)
}

func TestSetDiscountRateOnlyForPartners(t *testing.T) {
	svc, invitations := setupService(t)
	customerCode := issueCode(t, invitations, invitation.CodeTypeAdminUser, 0)
	partnerCode := issueCode(t, invitations, invitation.CodeTypeAdminPartner, 0)

	customer, err := svc.Register(&RegisterRequest{
		Email: "c@example.com", Password: "Str0ngPass", Name: "C", InvitationCode: customerCode.Code,
	})
	require.NoError(t, err)
	partner, err := svc.Register(&RegisterRequest{
		Email: "p@example.com", Password: "Str0ngPass", Name: "P", InvitationCode: partnerCode.Code,
	})
	require.NoError(t, err)

	_, err = svc.SetDiscountRate(customer.User.ID, 10)
	assert.Error(t, err)

	updated, err := svc.SetDiscountRate(partner.User.ID, 35)
	require.NoError(t, err)
	assert.Equal(t, 35, updated.DiscountRate)

	_, err = svc.SetDiscountRate(partner.User.ID, 101)
	assert.Error(t, err)
}

func TestUserDiscountBridgesToPricing(t *testing.T) {
	partner := &User{Role: RolePartner, DiscountRate: 30}
	customer := &User{Role: RoleCustomer, DiscountRate: 30}

	assert.True(t, partner.Discount().Partner)
	assert.Equal(t, 30, partner.Discount().Rate)
	assert.False(t, customer.Discount().Partner)
}

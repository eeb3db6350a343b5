// internal/domain/invitation/service.go
package invitation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/goldentier/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles invitation code business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new invitation service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents invitation code creation data
type CreateRequest struct {
	Type                CodeType `json:"type" binding:"required"`
	MaxUses             int      `json:"max_uses"`
	ExpiresInDays       int      `json:"expires_in_days"`
	DefaultDiscountRate int      `json:"default_discount_rate"`
	Notes               string   `json:"notes"`
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 8

// Create generates a new invitation code issued by the given user.
// Admins may issue any code type; partners may only issue referral codes.
func (s *Service) Create(createdBy uint, isAdmin bool, req *CreateRequest) (*Code, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid invitation code type: %s", req.Type)
	}
	if !isAdmin && req.Type != CodeTypePartnerUser {
		return nil, fmt.Errorf("only admins can issue %s codes", req.Type)
	}
	if req.DefaultDiscountRate < 0 || req.DefaultDiscountRate > 100 {
		return nil, fmt.Errorf("default discount rate must be between 0 and 100")
	}

	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = 1
	}

	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}

	var partnerID *uint
	if req.Type == CodeTypePartnerUser {
		partnerID = &createdBy
	}

	// Retry on the rare collision with an existing code
	for attempt := 0; attempt < 5; attempt++ {
		value, err := s.generateCode()
		if err != nil {
			return nil, err
		}

		code := Code{
			Code:                value,
			Type:                req.Type,
			CreatedBy:           createdBy,
			PartnerID:           partnerID,
			MaxUses:             maxUses,
			ExpiresAt:           expiresAt,
			IsActive:            true,
			DefaultDiscountRate: req.DefaultDiscountRate,
			Notes:               req.Notes,
		}

		if err := s.db.Create(&code).Error; err != nil {
			var existing Code
			if s.db.Unscoped().Where("code = ?", value).First(&existing).Error == nil {
				continue
			}
			return nil, fmt.Errorf("failed to create invitation code: %w", err)
		}
		return &code, nil
	}

	return nil, fmt.Errorf("failed to generate a unique invitation code")
}

// Validate looks up a code and verifies it is still redeemable
func (s *Service) Validate(value string) (*Code, error) {
	var code Code
	result := s.db.Where("code = ?", value).First(&code)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid invitation code")
		}
		return nil, fmt.Errorf("failed to retrieve invitation code: %w", result.Error)
	}

	now := time.Now()
	if !code.IsActive {
		return nil, fmt.Errorf("invitation code is no longer active")
	}
	if code.IsExpired(now) {
		return nil, fmt.Errorf("invitation code has expired")
	}
	if code.IsExhausted() {
		return nil, fmt.Errorf("invitation code has reached its usage limit")
	}

	return &code, nil
}

// Consume atomically redeems a code for the given user. The guarded
// update keeps concurrent registrations from exceeding max_uses.
func (s *Service) Consume(tx *gorm.DB, value string, userID uint, userName string) (*Code, error) {
	if tx == nil {
		tx = s.db
	}

	now := time.Now()
	result := tx.Model(&Code{}).
		Where("code = ? AND is_active = ? AND used_count < max_uses", value, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to redeem invitation code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("invitation code is not redeemable")
	}

	var code Code
	if err := tx.Where("code = ?", value).First(&code).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve invitation code: %w", err)
	}

	use := Use{
		CodeID:   code.ID,
		UserID:   userID,
		UserName: userName,
		UsedAt:   now,
	}
	if err := tx.Create(&use).Error; err != nil {
		return nil, fmt.Errorf("failed to record invitation use: %w", err)
	}

	return &code, nil
}

// ListByCreator lists codes issued by a user, newest first
func (s *Service) ListByCreator(createdBy uint) ([]Code, error) {
	var codes []Code
	err := s.db.Preload("Uses").
		Where("created_by = ?", createdBy).
		Order("created_at DESC").
		Find(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve invitation codes: %w", err)
	}
	return codes, nil
}

// ListAll lists every code, newest first
func (s *Service) ListAll() ([]Code, error) {
	var codes []Code
	err := s.db.Preload("Uses").Order("created_at DESC").Find(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve invitation codes: %w", err)
	}
	return codes, nil
}

// Deactivate disables a code so it can no longer be redeemed. Partners
// may only deactivate their own codes.
func (s *Service) Deactivate(id uint, requestedBy uint, isAdmin bool) error {
	var code Code
	if err := s.db.First(&code, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("invitation code not found")
		}
		return fmt.Errorf("failed to retrieve invitation code: %w", err)
	}

	if !isAdmin && code.CreatedBy != requestedBy {
		return fmt.Errorf("not allowed to deactivate this invitation code")
	}

	if err := s.db.Model(&code).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate invitation code: %w", err)
	}
	return nil
}

// generateCode builds a prefixed random code like GT7K2M9QX4
func (s *Service) generateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate invitation code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return s.config.Store.InvitationCodePrefix + string(buf), nil
}

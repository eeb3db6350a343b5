// internal/domain/identity/service.go
package identity

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/invitation"
	"github.com/goldentier/storefront-backend/internal/pkg/auth"
)

// Service handles user and authentication business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
	invitations *invitation.Service
}

// NewService creates a new identity service
func NewService(db *gorm.DB, cfg *config.Config, invitations *invitation.Service) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		jwtManager:  auth.NewJWTManager(cfg),
		passwordMgr: auth.NewPasswordManager(cfg),
		invitations: invitations,
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Name           string `json:"name" binding:"required"`
	InvitationCode string `json:"invitation_code" binding:"required"`
	Company        string `json:"company"`
	Phone          string `json:"phone"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents profile update data; nil fields are left unchanged
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// TokenPair represents an access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// Register creates a new account gated by a valid invitation code. The
// code type decides the role, and partner accounts inherit the code's
// default discount rate.
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("user with email %s already exists", req.Email)
	}

	code, err := s.invitations.Validate(req.InvitationCode)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := RoleCustomer
	discountRate := 0
	if code.Type.GrantsPartnerRole() {
		role = RolePartner
		discountRate = code.DefaultDiscountRate
		if discountRate <= 0 {
			discountRate = s.config.Store.PartnerDefaultDiscount
		}
	}

	var invitedBy *uint
	if code.PartnerID != nil {
		invitedBy = code.PartnerID
	} else {
		createdBy := code.CreatedBy
		invitedBy = &createdBy
	}

	user := User{
		Email:          req.Email,
		Password:       hashedPassword,
		Name:           req.Name,
		Role:           role,
		DiscountRate:   discountRate,
		Company:        req.Company,
		Phone:          req.Phone,
		InvitedBy:      invitedBy,
		InvitationCode: code.Code,
		IsActive:       true,
	}

	// Code consumption and user creation succeed or fail together
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if _, err := s.invitations.Consume(tx, code.Code, user.ID, user.Name); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.generateTokenPair(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// Login authenticates a user with email and password
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var user User
	result := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}

	if err := s.passwordMgr.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	tokens, err := s.generateTokenPair(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// RefreshToken issues a new token pair from a valid refresh token. The
// role is re-read from the database so revoked partners lose access on
// refresh.
func (s *Service) RefreshToken(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is deactivated")
	}

	return s.generateTokenPair(user)
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(id uint) (*User, error) {
	var user User
	result := s.db.First(&user, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}
	return &user, nil
}

// UpdateProfile applies partial updates to a user's own profile
func (s *Service) UpdateProfile(id uint, req *UpdateProfileRequest) (*User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetByID(id)
}

// ChangePassword changes a user's password after verifying the current one
func (s *Service) ChangePassword(id uint, req *ChangePasswordRequest) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.passwordMgr.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashedPassword, err := s.passwordMgr.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(user).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// ListUsers lists all users, newest first
func (s *Service) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return users, nil
}

// SetDiscountRate updates a partner's discount rate
func (s *Service) SetDiscountRate(id uint, rate int) (*User, error) {
	if rate < 0 || rate > 100 {
		return nil, fmt.Errorf("discount rate must be between 0 and 100")
	}

	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !user.IsPartner() {
		return nil, fmt.Errorf("discount rate can only be set for partners")
	}

	if err := s.db.Model(user).Update("discount_rate", rate).Error; err != nil {
		return nil, fmt.Errorf("failed to update discount rate: %w", err)
	}

	user.DiscountRate = rate
	return user, nil
}

// SetActive enables or disables a user account
func (s *Service) SetActive(id uint, active bool) (*User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	user.IsActive = active
	return user, nil
}

func (s *Service) generateTokenPair(user *User) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

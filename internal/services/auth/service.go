// Package auth handles registration, login and UPI PIN management. Wallets
// are created here at registration time; they are never deleted afterwards.
package auth

import (
	stderrors "errors"
	"log"
	"regexp"
	"strings"
	"time"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"
	"paylink/internal/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const maxFailedLoginAttempts = 5

var (
	pinPattern   = regexp.MustCompile(`^\d{4}(\d{2})?$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

var errInvalidCredentials = errors.Unauthorized("invalid credentials")

type RegisterRequest struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type Service interface {
	Register(req RegisterRequest) (*AuthResult, error)
	// Login accepts a UPI handle, phone or email as identifier.
	Login(identifier, password, clientIP string) (*AuthResult, error)
	RefreshTokens(refreshToken string) (string, string, error)
	// SetUpiPin sets or changes the 4 or 6 digit PIN used to authorize
	// transfers. Changing an existing PIN requires the account password.
	SetUpiPin(userID uint, password, pin string) error
}

type service struct {
	store             repositories.Store
	audit             audit.Service
	defaultDailyLimit decimal.Decimal
}

func NewService(store repositories.Store, auditSvc audit.Service, defaultDailyLimit decimal.Decimal) Service {
	if store == nil {
		panic("store is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	if defaultDailyLimit.IsZero() {
		defaultDailyLimit = decimal.NewFromInt(100000)
	}
	return &service{store: store, audit: auditSvc, defaultDailyLimit: defaultDailyLimit}
}

func (s *service) Register(req RegisterRequest) (*AuthResult, error) {
	if req.FullName == "" {
		return nil, errors.Validation("full name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, errors.Validation("invalid email")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, errors.Validation("invalid phone number")
	}
	if len(req.Password) < 8 {
		return nil, errors.Validation("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.ErrSystemFailure
	}

	user := &models.User{
		FullName:   req.FullName,
		Email:      strings.ToLower(req.Email),
		Phone:      req.Phone,
		Password:   string(hashed),
		UpiID:      req.Phone + "@upi",
		Role:       models.RoleUser,
		Status:     models.AccountStatusActive,
		IsVerified: true, // auto-verified in simulation
	}
	if err := s.store.Users().Create(user); err != nil {
		if stderrors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errors.Validation("email or phone already registered")
		}
		log.Printf("failed to register user: %v", err)
		return nil, errors.ErrSystemFailure
	}

	wallet := &models.Wallet{
		UserID:     user.ID,
		Balance:    decimal.Zero,
		DailySpent: decimal.Zero,
		DailyLimit: s.defaultDailyLimit,
	}
	if err := s.store.Wallets().Create(wallet); err != nil {
		log.Printf("failed to create wallet for user %d: %v", user.ID, err)
		return nil, errors.ErrSystemFailure
	}

	s.audit.Record(audit.Event{
		UserID:     user.ID,
		Action:     "USER_REGISTERED",
		Details:    "user registered with UPI ID " + user.UpiID,
		EntityType: "User",
		EntityID:   &user.ID,
		Success:    true,
	})

	return s.buildAuthResult(user)
}

func (s *service) Login(identifier, password, clientIP string) (*AuthResult, error) {
	user, err := s.store.Users().GetByIdentifier(identifier)
	if err != nil {
		return nil, errInvalidCredentials
	}

	if user.Status != models.AccountStatusActive {
		return nil, errors.Unauthorized("account is " + strings.ToLower(user.Status) + ", contact support")
	}
	if user.FailedLoginAttempts >= maxFailedLoginAttempts {
		return nil, errors.Unauthorized("account locked due to too many failed attempts")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if err := s.store.Users().IncrementFailedLoginAttempts(user.ID); err != nil {
			log.Printf("failed to record failed login for user %d: %v", user.ID, err)
		}
		s.audit.Record(audit.Event{
			UserID:     user.ID,
			Action:     "LOGIN_FAILED",
			Details:    "invalid password attempt",
			EntityType: "User",
			EntityID:   &user.ID,
			IPAddress:  clientIP,
			Success:    false,
		})
		return nil, errInvalidCredentials
	}

	if err := s.store.Users().ResetFailedLoginAttempts(user.ID); err != nil {
		log.Printf("failed to reset login attempts for user %d: %v", user.ID, err)
	}
	user.LastLoginAt = time.Now()
	user.LastLoginIP = clientIP
	if err := s.store.Users().Update(user); err != nil {
		log.Printf("failed to record last login for user %d: %v", user.ID, err)
	}
	s.audit.Record(audit.Event{
		UserID:     user.ID,
		Action:     "USER_LOGIN",
		Details:    "login successful",
		EntityType: "User",
		EntityID:   &user.ID,
		IPAddress:  clientIP,
		Success:    true,
	})

	return s.buildAuthResult(user)
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.store.Users().GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.Unauthorized("user not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.Unauthorized("token revoked")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
}

func (s *service) SetUpiPin(userID uint, password, pin string) error {
	if !pinPattern.MatchString(pin) {
		return errors.Validation("PIN must be 4 or 6 digits")
	}

	user, err := s.store.Users().GetByID(userID)
	if err != nil {
		return errors.NotFound("user not found")
	}

	// Changing an existing PIN requires re-authentication.
	if user.UpiPin != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return errInvalidCredentials
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrSystemFailure
	}
	hashedStr := string(hashed)
	user.UpiPin = &hashedStr

	if err := s.store.Users().Update(user); err != nil {
		log.Printf("failed to update PIN for user %d: %v", userID, err)
		return errors.ErrSystemFailure
	}

	s.audit.Record(audit.Event{
		UserID:     userID,
		Action:     "UPI_PIN_SET",
		Details:    "UPI PIN configured",
		EntityType: "User",
		EntityID:   &userID,
		Success:    true,
	})
	return nil
}

func (s *service) buildAuthResult(user *models.User) (*AuthResult, error) {
	access, refresh, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		log.Printf("failed to generate tokens: %v", err)
		return nil, errors.ErrSystemFailure
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Login checks the admin table first, then customers
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// Generate JWT token
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	log.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("User logged in")

	return &models.AuthResponse{
		Status:    "success",
		User:      user,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) authenticate(ctx context.Context, username, password string) (*models.SessionUser, error) {
	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error getting admin: %w", err)
	}
	if admin != nil {
		if !passwordMatches(admin.Password, password) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return &models.SessionUser{UserID: admin.ID, Role: models.RoleAdmin, Username: admin.Username}, nil
	}

	customer, err := s.repo.GetCustomerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error getting customer: %w", err)
	}

	// Offline customers have no password and can never log in
	if customer == nil || customer.Offline || customer.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !passwordMatches(customer.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &models.SessionUser{UserID: customer.ID, Role: models.RoleCustomer, Username: username}, nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a customer account through self-registration
func (s *DefaultService) Register(ctx context.Context, req models.RegisterCustomerRequest) (*models.Customer, error) {
	return s.createCustomer(ctx, req)
}

// ParseToken verifies a session token. Any failure yields nil, which callers
// treat as unauthenticated.
func (s *DefaultService) ParseToken(tokenString string) *models.SessionUser {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	username, _ := claims["username"].(string)
	if userID == "" || (role != models.RoleAdmin && role != models.RoleCustomer) {
		return nil
	}

	return &models.SessionUser{UserID: userID, Role: role, Username: username}
}

// CurrentUser resolves the profile behind a session. A session whose user
// has since been deleted is no longer authenticated.
func (s *DefaultService) CurrentUser(ctx context.Context, session models.SessionUser) (*models.CurrentUser, error) {
	if isAdmin(session) {
		admin, err := s.repo.GetAdminByID(ctx, session.UserID)
		if err != nil {
			return nil, fmt.Errorf("error getting admin: %w", err)
		}
		if admin == nil {
			return nil, apperrors.ErrUnauthenticated
		}
		return &models.CurrentUser{
			SessionUser: models.SessionUser{UserID: admin.ID, Role: models.RoleAdmin, Username: admin.Username},
			CreatedAt:   admin.CreatedAt,
		}, nil
	}

	customer, err := s.repo.GetCustomerByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting customer: %w", err)
	}
	if customer == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	user := &models.CurrentUser{
		SessionUser:       models.SessionUser{UserID: customer.ID, Role: models.RoleCustomer},
		Name:              customer.Name,
		Phone:             customer.Phone,
		Address:           customer.Address,
		UniqueCode:        customer.UniqueCode,
		PreferredCurrency: customer.PreferredCurrency,
		CreatedAt:         customer.CreatedAt,
	}
	if customer.Username != nil {
		user.Username = *customer.Username
	}
	return user, nil
}

// Helper functions
func (s *DefaultService) generateJWT(user *models.SessionUser) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":      user.UserID, // subject
		"role":     user.Role,
		"username": user.Username,
		"exp":      expirationTime.Unix(),
		"iat":      time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

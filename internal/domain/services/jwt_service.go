package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// InterfaceJWTService defines token issue/validation and login
type InterfaceJWTService interface {
	GenerateToken(userID uint, role models.UserRole, propertyID *uint) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// JWTClaims are the claims carried by portal tokens
type JWTClaims struct {
	UserID     uint            `json:"user_id"`
	Role       models.UserRole `json:"role"`
	PropertyID *uint           `json:"property_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens
type JWTService struct {
	secretKey string
	issuer    string
	ttl       time.Duration
	DB        *gorm.DB
}

// NewJWTService creates a JWT service
func NewJWTService(cfg *config.Config, db *gorm.DB) *JWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "strata-portal",
		ttl:       24 * time.Hour,
		DB:        db,
	}
}

// 1 GenerateToken signs a token valid for 24 hours
func (s *JWTService) GenerateToken(userID uint, role models.UserRole, propertyID *uint) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:     userID,
		Role:       role,
		PropertyID: propertyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// 2 ValidateToken parses the token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("invalid role claim")
	}
	return claims, nil
}

// 3 Login checks credentials and issues a token
func (s *JWTService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status == "inactive" {
		return nil, ErrUserInactive
	}

	token, err := s.GenerateToken(user.ID, user.Role, user.PropertyID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl),
		User:      &user,
	}, nil
}

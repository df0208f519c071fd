package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

type AuthService interface {
	Login(username, password string) (string, *models.AdminUser, error)
	VerifyToken(token string) (uuid.UUID, error)
}

type authService struct {
	admins   repositories.AdminUserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(admins repositories.AdminUserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		admins:   admins,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Login(username, password string) (string, *models.AdminUser, error) {
	admin, err := s.admins.FindByUsername(username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": admin.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, admin, nil
}

func (s *authService) VerifyToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject")
	}
	adminID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject")
	}
	return adminID, nil
}

// HashPassword is used by seeding.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

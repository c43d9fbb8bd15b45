package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrGuardSuspended = errors.New("guard account is suspended")
var ErrTokenInvalid = errors.New("token is invalid or expired")

type AuthService struct {
	guardRepo     repository.GuardRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(guardRepo repository.GuardRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		guardRepo:     guardRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginGuardDTO) (*domain.AuthResponseDTO, error) {
	guard, err := s.guardRepo.FindByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up guard: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(guard.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if guard.Suspended {
		return nil, ErrGuardSuspended
	}

	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", guard.ID),
		"exp":      expirationTime.Unix(),
		"iat":      time.Now().Unix(),
		"role":     guard.Role(),
		"username": guard.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:    tokenString,
		GuardID:  guard.ID,
		Username: guard.Username,
		Role:     guard.Role(),
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrTokenInvalid)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

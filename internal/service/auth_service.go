package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

// ErrInvalidCredentials is returned when the email or password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Role   model.Role `json:"role"`
	UserID int        `json:"user_id"`
	Email  string     `json:"email"`
}

// AuthService handles credentials, password hashing and JWT issuance.
type AuthService struct {
	cfg             *config.Config
	rdb             *redis.Client
	participantRepo *repository.ParticipantRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, participantRepo *repository.ParticipantRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, participantRepo: participantRepo}
}

// Login validates the email and password pair and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Participant, string, error) {
	p, err := s.participantRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := s.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.GenerateToken(ctx, p)
	if err != nil {
		return nil, "", err
	}
	return p, token, nil
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a JWT for a participant or reviewer and records
// the login instant in Redis so a proctor can see who has connected.
func (s *AuthService) GenerateToken(ctx context.Context, p *model.Participant) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:   p.Role,
		UserID: p.ID,
		Email:  p.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if p.Role == model.RoleParticipant {
		loginKey := config.CacheKey.ParticipantLoginKey(p.ID)
		if err := s.rdb.Set(ctx, loginKey, now.Format(time.RFC3339), s.cfg.JWTExpiry).Err(); err != nil {
			return "", fmt.Errorf("record login: %w", err)
		}
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

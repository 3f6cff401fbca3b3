package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/pkg/models"
)

// AuthService issues and validates the JWT session tokens returned at login.
// The hot Redis client tracks revocations; it is optional, and token
// validation degrades to signature-only checks without it.
type AuthService struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtSecret   []byte
}

func NewAuthService(cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *AuthService {
	return &AuthService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		jwtSecret:   []byte(cfg.Auth.JWTSecret),
	}
}

func (s *AuthService) GenerateToken(sessionID uuid.UUID, userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.Auth.TokenTTL)
	claims := &models.SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "github.com/reelwise/reelwise",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if s.redisClient != nil {
		sessionKey := fmt.Sprintf("session:%s", sessionID.String())
		if err := s.redisClient.Set(context.Background(), sessionKey, userID, s.config.Auth.TokenTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to store session in Redis")
			// Don't fail token generation if Redis is down
		}
	}

	return tokenString, expiresAt, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if s.redisClient != nil {
		sessionKey := fmt.Sprintf("session:%s", claims.SessionID.String())
		exists, err := s.redisClient.Exists(context.Background(), sessionKey).Result()
		if err != nil {
			s.logger.WithError(err).Warn("Failed to check session in Redis")
			// Continue validation even if Redis is down
		} else if exists == 0 {
			return nil, fmt.Errorf("session not found or expired")
		}
	}

	return claims, nil
}

func (s *AuthService) RevokeToken(sessionID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}
	sessionKey := fmt.Sprintf("session:%s", sessionID.String())
	if err := s.redisClient.Del(context.Background(), sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

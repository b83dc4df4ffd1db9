package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"invest/internal/models"
	"invest/internal/repositories"
)

// AuthService handles business logic for registration and authentication.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates a user. A duplicate username yields
// repositories.ErrDuplicateUsername; a snapshot failure yields an error
// wrapping store.ErrPersist while the user remains registered in memory.
func (s *AuthService) Register(username, password string) (models.User, error) {
	user, err := s.userRepo.Register(username, password)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			s.logger.Info("registration rejected", zap.String("username", username))
		} else {
			s.logger.Error("registration not persisted", zap.String("username", username), zap.Error(err))
		}
		return user, err
	}
	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Authenticate returns the ID of the user matching both credentials.
func (s *AuthService) Authenticate(username, password string) (int, error) {
	id, err := s.userRepo.Authenticate(username, password)
	if err != nil {
		s.logger.Info("authentication failed", zap.String("username", username))
		return 0, err
	}
	return id, nil
}

// UserCount returns the number of registered users.
func (s *AuthService) UserCount() int {
	return s.userRepo.Count()
}

// LoginUser authenticates a user and returns a signed JWT with their ID.
func (s *AuthService) LoginUser(username, password string) (string, int, error) {
	id, err := s.Authenticate(username, password)
	if err != nil {
		return "", 0, err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  id,
		"username": username,
		"jti":      uuid.New().String(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, id, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation error", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// UserIDFromClaims extracts the numeric user ID from validated claims.
func UserIDFromClaims(claims jwt.MapClaims) (int, error) {
	// JSON numbers decode as float64.
	raw, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid token: missing user_id claim")
	}
	return int(raw), nil
}

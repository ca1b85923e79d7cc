package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// CredentialServiceInterface defines the methods used by handlers from CredentialService
type CredentialServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, site, username, password, masterPassword string) (*models.Credential, error)
	List(ctx context.Context, userID uuid.UUID, masterPassword, search string) ([]models.Credential, error)
	Get(ctx context.Context, id, userID uuid.UUID, masterPassword string) (*models.Credential, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "passkeeper"

// Token kinds. A token is only accepted where its kind is expected.
const (
	accessTokenKind  = "access"
	refreshTokenKind = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTService issues the session tokens. Sessions identify the account only;
// the master password never goes into a token and is sent per request.
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Kind   string    `json:"kind"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *JWTService) GenerateTokenPair(userID uuid.UUID, email string) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(newClaims(accessTokenKind, userID, now, s.accessExpiry, func(c *Claims) {
		c.Email = email
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	// jti keeps refresh tokens issued in the same second distinct; the
	// token store keys rows by hash
	refresh, err := s.sign(newClaims(refreshTokenKind, userID, now, s.refreshExpiry, func(c *Claims) {
		c.ID = uuid.NewString()
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func newClaims(kind string, userID uuid.UUID, now time.Time, ttl time.Duration, opts ...func(*Claims)) Claims {
	c := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (s *JWTService) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// parse checks signature, issuer and lifetime, then that the token is of the
// wanted kind and names a user.
func (s *JWTService) parse(tokenString, kind string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", kind, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, kind, claims.Kind)
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("%w: subject does not name a user", ErrInvalidToken)
	}

	return claims, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, accessTokenKind)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString, refreshTokenKind)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// HashToken is how refresh tokens are stored; the raw token never is.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

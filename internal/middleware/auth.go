// Package middleware guards the vault routes. Auth identifies the caller from
// a bearer token; MasterPassword then proves the caller can unlock the vault
// and hands the password on to the credential handlers.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	AuthorizationHeader  = "Authorization"
	MasterPasswordHeader = "X-Master-Password"
)

// Context keys.
const (
	UserIDKey         = "user_id"
	MasterPasswordKey = "master_password"
)

// AccessTokenValidator is met by *services.JWTService.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*services.Claims, error)
}

// PasswordVerifier checks a password against the account it belongs to.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

// bearerToken splits "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

func Auth(tokens AccessTokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		header := c.GetHeader(AuthorizationHeader)
		if header == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)

		c.Next()
	}
}

// MasterPassword must run after Auth. The X-Master-Password header is
// checked against the caller's account hash before any handler can use it
// as a cipher passphrase, so a wrong password is a 401 and never reaches
// decryption.
func MasterPassword(verifier PasswordVerifier) drift.HandlerFunc {
	return func(c *drift.Context) {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			c.Unauthorized("not authenticated")
			return
		}

		password := c.GetHeader(MasterPasswordHeader)
		if password == "" {
			c.Unauthorized("missing master password")
			return
		}

		err := verifier.VerifyPassword(c.Request.Context(), userID, password)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserNotFound):
			c.Unauthorized("invalid master password")
			return
		default:
			c.InternalServerError("failed to verify master password")
			return
		}

		c.Set(MasterPasswordKey, password)
		c.Next()
	}
}

func value[T any](c *drift.Context, key string) T {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		return zero
	}
	return t
}

func GetUserID(c *drift.Context) uuid.UUID {
	return value[uuid.UUID](c, UserIDKey)
}

// GetMasterPassword returns the verified master password, or "" outside a
// MasterPassword route.
func GetMasterPassword(c *drift.Context) string {
	return value[string](c, MasterPasswordKey)
}

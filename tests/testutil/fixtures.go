package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/passkeeper/internal/database"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the login (and master) password of fixture users.
const DefaultPassword = "fixture-master-password"

// TestCipher returns a sealed cipher with parameters cheap enough for tests.
func TestCipher() secret.Cipher {
	return secret.NewSealed(secret.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1})
}

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user whose password is DefaultPassword unless
// WithPassword overrides it.
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	o := userOptions{
		email:    fmt.Sprintf("user%d@example.com", f.counter),
		password: DefaultPassword,
	}
	for _, opt := range opts {
		opt(&o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{}
	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at
	`, o.email, string(hash)).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

type userOptions struct {
	email    string
	password string
}

// UserOption configures a test user
type UserOption func(*userOptions)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(o *userOptions) {
		o.email = email
	}
}

// WithPassword sets the user's password
func WithPassword(password string) UserOption {
	return func(o *userOptions) {
		o.password = password
	}
}

// CreateCredential stores a credential for user with password encrypted
// under masterPassword by c.
func (f *Fixtures) CreateCredential(t *testing.T, c secret.Cipher, user *models.User, password, masterPassword string) *models.EncryptedCredential {
	t.Helper()
	f.counter++

	ciphertext, err := c.Encrypt(password, masterPassword)
	if err != nil {
		t.Fatalf("failed to encrypt credential: %v", err)
	}

	cred := &models.EncryptedCredential{}
	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO credentials (user_id, site, username, encrypted_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, site, username, encrypted_password, created_at, updated_at
	`, user.ID, fmt.Sprintf("site%d.example.com", f.counter), fmt.Sprintf("login%d", f.counter), ciphertext).Scan(
		&cred.ID, &cred.UserID, &cred.Site, &cred.Username, &cred.EncryptedPassword,
		&cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create credential: %v", err)
	}

	return cred
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dimitrije/passkeeper/internal/database"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialService stores site credentials with the password encrypted
// under the owner's master password. Ciphertexts are written and read back
// untouched; only the cipher interprets them.
type CredentialService struct {
	db     *database.DB
	cipher secret.Cipher
	logger *slog.Logger
}

func NewCredentialService(db *database.DB, cipher secret.Cipher, logger *slog.Logger) *CredentialService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{db: db, cipher: cipher, logger: logger}
}

// Create encrypts password and stores the credential. If encryption fails
// nothing is written.
func (s *CredentialService) Create(ctx context.Context, userID uuid.UUID, site, username, password, masterPassword string) (*models.Credential, error) {
	ciphertext, err := s.cipher.Encrypt(password, masterPassword)
	if err != nil {
		s.logger.Error("failed to encrypt credential", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	var enc models.EncryptedCredential
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO credentials (user_id, site, username, encrypted_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, site, username, encrypted_password, created_at, updated_at
	`, userID, site, username, ciphertext).Scan(
		&enc.ID, &enc.UserID, &enc.Site, &enc.Username, &enc.EncryptedPassword,
		&enc.CreatedAt, &enc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return enc.WithPassword(password), nil
}

// ListEncrypted returns the stored form of the user's credentials, oldest
// first. A non-empty search keeps credentials whose site or username contains
// it, ignoring case.
func (s *CredentialService) ListEncrypted(ctx context.Context, userID uuid.UUID, search string) ([]models.EncryptedCredential, error) {
	query := `
		SELECT id, user_id, site, username, encrypted_password, created_at, updated_at
		FROM credentials
		WHERE user_id = $1`
	args := []any{userID}

	if search = strings.TrimSpace(search); search != "" {
		query += ` AND (site ILIKE $2 OR username ILIKE $2)`
		args = append(args, containsPattern(search))
	}
	query += `
		ORDER BY created_at ASC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var items []models.EncryptedCredential
	for rows.Next() {
		var item models.EncryptedCredential
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Site, &item.Username, &item.EncryptedPassword,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	return items, nil
}

// List decrypts every matching credential. One undecryptable record fails
// the whole call with an error wrapping secret.ErrDecryption.
func (s *CredentialService) List(ctx context.Context, userID uuid.UUID, masterPassword, search string) ([]models.Credential, error) {
	items, err := s.ListEncrypted(ctx, userID, search)
	if err != nil {
		return nil, err
	}

	credentials := make([]models.Credential, 0, len(items))
	for i := range items {
		cred, err := s.decrypt(&items[i], masterPassword)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, *cred)
	}
	return credentials, nil
}

func (s *CredentialService) Get(ctx context.Context, id, userID uuid.UUID, masterPassword string) (*models.Credential, error) {
	var enc models.EncryptedCredential
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, site, username, encrypted_password, created_at, updated_at
		FROM credentials
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&enc.ID, &enc.UserID, &enc.Site, &enc.Username, &enc.EncryptedPassword,
		&enc.CreatedAt, &enc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return s.decrypt(&enc, masterPassword)
}

func (s *CredentialService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM credentials WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// Count returns how many credentials userID has stored. It needs no master
// password since nothing is decrypted.
func (s *CredentialService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM credentials WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return n, nil
}

func (s *CredentialService) decrypt(enc *models.EncryptedCredential, masterPassword string) (*models.Credential, error) {
	plaintext, err := s.cipher.Decrypt(enc.EncryptedPassword, masterPassword)
	if err != nil {
		s.logger.Warn("failed to decrypt credential", "credential_id", enc.ID, "user_id", enc.UserID)
		return nil, fmt.Errorf("failed to decrypt credential %s: %w", enc.ID, err)
	}
	return enc.WithPassword(plaintext), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

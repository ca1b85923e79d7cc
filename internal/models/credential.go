package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential holds a decrypted secret. It is built on demand for a response
// and never persisted.
type Credential struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Site      string    `json:"site"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EncryptedCredential is the stored form of a Credential.
type EncryptedCredential struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Site              string    `json:"site"`
	Username          string    `json:"username"`
	EncryptedPassword string    `json:"encrypted_password"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WithPassword returns the decrypted view of c.
func (c *EncryptedCredential) WithPassword(password string) *Credential {
	return &Credential{
		ID:        c.ID,
		UserID:    c.UserID,
		Site:      c.Site,
		Username:  c.Username,
		Password:  password,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

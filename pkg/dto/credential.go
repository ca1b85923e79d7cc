package dto

import "github.com/google/uuid"

type CreateCredentialRequest struct {
	Site     string `json:"site" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type CredentialResponse struct {
	ID        uuid.UUID `json:"id"`
	Site      string    `json:"site"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt string    `json:"created_at"`
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// UserHandler serves the account profile. It never touches ciphertext, so
// its routes need a session but not the master password.
type UserHandler struct {
	users       UserServiceInterface
	credentials CredentialServiceInterface
}

func NewUserHandler(users UserServiceInterface, credentials CredentialServiceInterface) *UserHandler {
	return &UserHandler{users: users, credentials: credentials}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := c.Request.Context()
	account, err := h.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.NotFound("user not found")
		return
	case err != nil:
		c.InternalServerError("failed to load user")
		return
	}

	stored, err := h.credentials.Count(ctx, userID)
	if err != nil {
		c.InternalServerError("failed to count credentials")
		return
	}

	_ = c.JSON(http.StatusOK, dto.UserResponse{
		ID:              account.ID,
		Email:           account.Email,
		CreatedAt:       account.CreatedAt.Format(time.RFC3339),
		CredentialCount: stored,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const decryptFailedMessage = "failed to decrypt data. incorrect password or corrupted data"

// CredentialHandler serves the credential store. Routes that read or write
// secrets sit behind middleware.MasterPassword.
type CredentialHandler struct {
	credentialService CredentialServiceInterface
}

func NewCredentialHandler(credentialService CredentialServiceInterface) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

func (h *CredentialHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	creds, err := h.credentialService.List(
		c.Request.Context(), userID, middleware.GetMasterPassword(c), c.QueryParam("search"),
	)
	if err != nil {
		if errors.Is(err, secret.ErrDecryption) {
			_ = c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": decryptFailedMessage})
			return
		}
		c.InternalServerError("failed to list credentials")
		return
	}

	response := make([]dto.CredentialResponse, len(creds))
	for i := range creds {
		response[i] = credentialResponse(&creds[i])
	}

	_ = c.JSON(200, response)
}

func (h *CredentialHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateCredentialRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(validationMessage(err))
		return
	}

	cred, err := h.credentialService.Create(
		c.Request.Context(), userID, req.Site, req.Username, req.Password, middleware.GetMasterPassword(c),
	)
	if err != nil {
		if errors.Is(err, secret.ErrEncryption) {
			c.InternalServerError("failed to encrypt data")
			return
		}
		c.InternalServerError("failed to create credential")
		return
	}

	_ = c.JSON(201, credentialResponse(cred))
}

func (h *CredentialHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	credentialID, err := uuid.Parse(c.Param("credentialId"))
	if err != nil {
		c.BadRequest("invalid credential id")
		return
	}

	cred, err := h.credentialService.Get(c.Request.Context(), credentialID, userID, middleware.GetMasterPassword(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCredentialNotFound):
			c.NotFound("credential not found")
		case errors.Is(err, secret.ErrDecryption):
			_ = c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": decryptFailedMessage})
		default:
			c.InternalServerError("failed to get credential")
		}
		return
	}

	_ = c.JSON(200, credentialResponse(cred))
}

func (h *CredentialHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	credentialID, err := uuid.Parse(c.Param("credentialId"))
	if err != nil {
		c.BadRequest("invalid credential id")
		return
	}

	if err := h.credentialService.Delete(c.Request.Context(), credentialID, userID); err != nil {
		if errors.Is(err, services.ErrCredentialNotFound) {
			c.NotFound("credential not found")
			return
		}
		c.InternalServerError("failed to delete credential")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "credential deleted"})
}

func credentialResponse(cred *models.Credential) dto.CredentialResponse {
	return dto.CredentialResponse{
		ID:        cred.ID,
		Site:      cred.Site,
		Username:  cred.Username,
		Password:  cred.Password,
		CreatedAt: cred.CreatedAt.Format(time.RFC3339),
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/passkeeper/internal/config"
	"github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/password"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	cfg          *config.Config
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}
}

func (h *AuthHandler) Signup(c *drift.Context) {
	var req dto.SignupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(validationMessage(err))
		return
	}

	if password.Length(req.Password) < h.cfg.PasswordMinLength {
		c.BadRequest(fmt.Sprintf("password must be at least %d characters", h.cfg.PasswordMinLength))
		return
	}
	if req.Password != req.ConfirmPassword {
		c.BadRequest("passwords do not match")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.Signup(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			c.BadRequest("email is already registered")
		case errors.Is(err, services.ErrPasswordTooLong):
			c.BadRequest("password is too long")
		default:
			c.InternalServerError("failed to create account")
		}
		return
	}

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError(err.Error())
		return
	}

	_ = c.JSON(201, resp)
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(validationMessage(err))
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Unauthorized("invalid email or password")
			return
		}
		c.InternalServerError("failed to sign in")
		return
	}

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError(err.Error())
		return
	}

	_ = c.JSON(200, resp)
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := c.Request.Context()

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	newTokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.Rotate(ctx, user.ID, tokenHash, newTokenHash, expiresAt); err != nil {
		if errors.Is(err, services.ErrRefreshTokenNotFound) {
			c.Unauthorized("refresh token not found or expired")
			return
		}
		c.InternalServerError("failed to rotate refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		_ = h.tokenService.RevokeRefreshToken(c.Request.Context(), tokenHash)
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, errors.New("failed to generate tokens")
	}

	tokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/passkeeper/internal/config"
	"github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/dimitrije/passkeeper/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, *testutil.MockTokenService, *testutil.MockJWTService, *AuthHandler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)

	cfg := &config.Config{PasswordMinLength: 8}
	handler := NewAuthHandler(cfg, mockUserService, mockTokenService, mockJWTService)

	return mockUserService, mockTokenService, mockJWTService, handler
}

func postJSON(t *testing.T, app http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Request(t, app, http.MethodPost, path, body, nil)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "new@example.com"}
	tokenPair := &services.TokenPair{
		AccessToken:  "access-token-123",
		RefreshToken: "refresh-token-456",
		ExpiresIn:    900,
	}

	mockUserService.On("Signup", mock.Anything, "new@example.com", "long-enough-pw").Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "new@example.com").Return(tokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, services.HashToken("refresh-token-456"), mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/signup", handler.Signup)

	rec := postJSON(t, app, "/auth/signup", dto.SignupRequest{
		Email:           "new@example.com",
		Password:        "long-enough-pw",
		ConfirmPassword: "long-enough-pw",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "access-token-123", response.AccessToken)
	assert.Equal(t, "refresh-token-456", response.RefreshToken)
	assert.Equal(t, int64(900), response.ExpiresIn)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		req     dto.SignupRequest
		message string
	}{
		{
			name:    "missing email",
			req:     dto.SignupRequest{Password: "long-enough-pw", ConfirmPassword: "long-enough-pw"},
			message: "email is required",
		},
		{
			name:    "invalid email",
			req:     dto.SignupRequest{Email: "not-an-email", Password: "long-enough-pw", ConfirmPassword: "long-enough-pw"},
			message: "email must be a valid email address",
		},
		{
			name:    "short password",
			req:     dto.SignupRequest{Email: "a@example.com", Password: "short", ConfirmPassword: "short"},
			message: "password must be at least 8 characters",
		},
		{
			name:    "short in utf-16 units",
			req:     dto.SignupRequest{Email: "a@example.com", Password: "😀😀😀", ConfirmPassword: "😀😀😀"},
			message: "password must be at least 8 characters",
		},
		{
			name:    "mismatched confirmation",
			req:     dto.SignupRequest{Email: "a@example.com", Password: "long-enough-pw", ConfirmPassword: "long-enough-px"},
			message: "passwords do not match",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockUserService, _, _, handler := setupAuthTest(t)

			app := drift.New()
			app.Use(driftmw.BodyParser())
			app.Post("/auth/signup", handler.Signup)

			rec := postJSON(t, app, "/auth/signup", tc.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			mockUserService.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthHandler_Signup_EmailTaken(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	mockUserService.On("Signup", mock.Anything, "taken@example.com", "long-enough-pw").
		Return(nil, services.ErrUserAlreadyExists)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/signup", handler.Signup)

	rec := postJSON(t, app, "/auth/signup", dto.SignupRequest{
		Email:           "taken@example.com",
		Password:        "long-enough-pw",
		ConfirmPassword: "long-enough-pw",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is already registered")
	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Signup_AstralCharactersCountTwice(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	// four runes, eight UTF-16 units
	pw := "😀😀😀😀"
	mockUserService.On("Signup", mock.Anything, "emoji@example.com", pw).
		Return(nil, services.ErrUserAlreadyExists)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/signup", handler.Signup)

	rec := postJSON(t, app, "/auth/signup", dto.SignupRequest{
		Email:           "emoji@example.com",
		Password:        pw,
		ConfirmPassword: pw,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is already registered")
	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com"}
	tokenPair := &services.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
	}

	mockUserService.On("Authenticate", mock.Anything, "test@example.com", "s3cret-pass").Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(tokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{Email: "test@example.com", Password: "s3cret-pass"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "access-token", response.AccessToken)

	mockUserService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockUserService, _, mockJWTService, handler := setupAuthTest(t)

	mockUserService.On("Authenticate", mock.Anything, "test@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{Email: "test@example.com", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	mockJWTService.AssertNotCalled(t, "GenerateTokenPair", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_ServiceError(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	mockUserService.On("Authenticate", mock.Anything, "test@example.com", "whatever").
		Return(nil, errors.New("connection refused"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{Email: "test@example.com", Password: "whatever"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com"}

	oldRefreshToken := "old-refresh-token"
	newTokenPair := &services.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresIn:    3600,
	}

	mockJWTService.On("ValidateRefreshToken", oldRefreshToken).Return(userID, nil)
	mockTokenService.On("ValidateRefreshToken", mock.Anything, services.HashToken(oldRefreshToken)).Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(newTokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("Rotate", mock.Anything, userID,
		services.HashToken(oldRefreshToken), services.HashToken("new-refresh-token"), mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: oldRefreshToken})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_AlreadyRotated(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com"}

	mockJWTService.On("ValidateRefreshToken", "reused-token").Return(userID, nil)
	mockTokenService.On("ValidateRefreshToken", mock.Anything, mock.Anything).Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").
		Return(&services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
	mockJWTService.On("RefreshExpiry").Return(time.Hour)
	mockTokenService.On("Rotate", mock.Anything, userID, mock.Anything, mock.Anything, mock.Anything).
		Return(services.ErrRefreshTokenNotFound)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "reused-token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh token not found or expired")
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	_, _, mockJWTService, handler := setupAuthTest(t)

	mockJWTService.On("ValidateRefreshToken", "invalid-token").Return(uuid.Nil, errors.New("invalid token"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "invalid-token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")

	mockJWTService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token is required")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	mockTokenService.On("RevokeRefreshToken", mock.Anything, services.HashToken("some-refresh-token")).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	rec := postJSON(t, app, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: "some-refresh-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Logout_EmptyToken(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	rec := postJSON(t, app, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: ""})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
	mockTokenService.AssertNotCalled(t, "RevokeRefreshToken", mock.Anything, mock.Anything)
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	userID := uuid.New()

	mockTokenService.On("RevokeAllUserTokens", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Post("/auth/logout-all", handler.LogoutAll)

	rec := testutil.Request(t, app, http.MethodPost, "/auth/logout-all", nil, testutil.Bearer(testutil.GenerateTestToken(t, userID)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_NotAuthenticated(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Post("/auth/logout-all", handler.LogoutAll)

	rec := testutil.Request(t, app, http.MethodPost, "/auth/logout-all", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

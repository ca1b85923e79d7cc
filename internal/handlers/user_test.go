package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/models"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/dimitrije/passkeeper/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type profileTest struct {
	users       *testutil.MockUserService
	credentials *testutil.MockCredentialService
	app         http.Handler
}

func newProfileTest() *profileTest {
	pt := &profileTest{
		users:       new(testutil.MockUserService),
		credentials: new(testutil.MockCredentialService),
	}
	handler := NewUserHandler(pt.users, pt.credentials)

	app := drift.New()
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Get("/users/me", handler.GetMe)
	pt.app = app
	return pt
}

func (pt *profileTest) getMe(t *testing.T, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Request(t, pt.app, http.MethodGet, "/users/me", nil,
		testutil.Bearer(testutil.GenerateTestToken(t, userID)))
}

func TestUserHandler_GetMe(t *testing.T) {
	pt := newProfileTest()
	userID := uuid.New()

	pt.users.On("GetByID", mock.Anything, userID).Return(&models.User{
		ID:           userID,
		Email:        "vault@example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}, nil)
	pt.credentials.On("Count", mock.Anything, userID).Return(3, nil)

	rec := pt.getMe(t, userID)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var profile dto.UserResponse
	testutil.DecodeJSON(t, rec, &profile)
	assert.Equal(t, dto.UserResponse{
		ID:              userID,
		Email:           "vault@example.com",
		CreatedAt:       "2024-03-01T12:00:00Z",
		CredentialCount: 3,
	}, profile)

	pt.users.AssertExpectations(t)
	pt.credentials.AssertExpectations(t)
}

func TestUserHandler_GetMe_NoSession(t *testing.T) {
	pt := newProfileTest()

	rec := testutil.Request(t, pt.app, http.MethodGet, "/users/me", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	pt.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserHandler_GetMe_Failures(t *testing.T) {
	testCases := []struct {
		name     string
		lookup   error
		countErr error
		status   int
		message  string
	}{
		{"account deleted", services.ErrUserNotFound, nil, http.StatusNotFound, "user not found"},
		{"lookup fails", errors.New("connection reset"), nil, http.StatusInternalServerError, "failed to load user"},
		{"count fails", nil, errors.New("connection reset"), http.StatusInternalServerError, "failed to count credentials"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pt := newProfileTest()
			userID := uuid.New()

			if tc.lookup != nil {
				pt.users.On("GetByID", mock.Anything, userID).Return(nil, tc.lookup)
			} else {
				pt.users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				pt.credentials.On("Count", mock.Anything, userID).Return(0, tc.countErr)
			}

			rec := pt.getMe(t, userID)

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			pt.users.AssertExpectations(t)
			pt.credentials.AssertExpectations(t)
		})
	}
}

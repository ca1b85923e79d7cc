package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	TestJWTSecret = "test-secret-key-for-testing-only"

	// Same header names the middleware reads.
	authorizationHeader  = "Authorization"
	masterPasswordHeader = "X-Master-Password"
)

// TestJWTService signs with TestJWTSecret and test-length expiries.
func TestJWTService() *services.JWTService {
	return services.NewJWTService(TestJWTSecret, 15*time.Minute, 24*time.Hour)
}

// GenerateTestToken returns an access token for userID signed by
// TestJWTService.
func GenerateTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	pair, err := TestJWTService().GenerateTokenPair(userID, "test@example.com")
	require.NoError(t, err)
	return pair.AccessToken
}

// Headers are extra request headers. Empty values are not sent.
type Headers map[string]string

// Bearer authenticates a request with an access token.
func Bearer(token string) Headers {
	return Headers{authorizationHeader: "Bearer " + token}
}

// Vault authenticates a request and unlocks the credential routes with
// masterPassword. An empty masterPassword leaves the header off.
func Vault(token, masterPassword string) Headers {
	h := Bearer(token)
	h[masterPasswordHeader] = masterPassword
	return h
}

// Request serves one request through handler. A non-nil body is sent as
// JSON.
func Request(t *testing.T, handler http.Handler, method, path string, body any, headers Headers) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes the response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

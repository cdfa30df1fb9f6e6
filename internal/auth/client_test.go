package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
)

func newTestClient(srvURL string) *authClient {
	return NewClient(&config.AuthConfig{
		BaseURL:     srvURL,
		GetUserPath: "/users/me",
		Timeout:     2 * time.Second,
	}).(*authClient)
}

func TestGetUser_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/users/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"user_id": "4e2fd08f-468f-49f5-bb6a-2e4ea8ea77e0",
			"email": "user@example.com",
			"name": "Test User",
			"role": "user"
		}`)
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).GetUser(t.Context(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestGetUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetUser(t.Context(), "expired")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetUser_ProviderOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetUser(t.Context(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

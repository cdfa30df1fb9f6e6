package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

type authClient struct {
	getUserURL string
	httpClient *http.Client
}

// NewClient creates an IdentityProvider backed by the external auth service.
func NewClient(cfg *config.AuthConfig) port.IdentityProvider {
	return &authClient{
		getUserURL: cfg.BaseURL + cfg.GetUserPath,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *authClient) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.getUserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: get user request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("auth: get user status %d: %s", resp.StatusCode, body)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("auth: decoding user: %w", err)
	}
	return &user, nil
}

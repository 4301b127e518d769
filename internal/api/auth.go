package api

import (
	"context"
	"net/http"

	"parley/internal/models"
)

// Login exchanges credentials for a session cookie. The identity itself is
// not in the response; callers follow up with Identity.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, loginPath, creds, nil)
}

// Logout asks the server to invalidate the session cookie. Callers clear
// their local state regardless of whether this call succeeds.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/logout", nil, nil)
}

// CreateAccount registers a new user.
func (c *Client) CreateAccount(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/create_account", creds, nil)
}

// Identity returns the authenticated user as the server sees it.
func (c *Client) Identity(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/protected", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

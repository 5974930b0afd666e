package httpapi

import (
	"context"
	"net/http"

	"linkvault/pkg/models"
)

// Register creates a user account and returns it with a fresh API key. This
// is the one unauthenticated write on the API.
func (c *Client) Register(ctx context.Context, email, displayName string) (*models.User, error) {
	payload := struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}{email, displayName}
	var user models.User
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/v1/users", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account behind the configured API key.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doGetRequest(ctx, "/api/v1/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

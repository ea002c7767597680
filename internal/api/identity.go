package api

import (
	"context"
	"net/http"

	"github.com/nhle/task-tracker/internal/model"
)

// Me returns the identity behind the default bearer credential.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	return c.MeWithToken(ctx, "")
}

// MeWithToken returns the identity behind token, or behind the default
// credential when token is empty.
func (c *Client) MeWithToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/me",
		token:  token,
		result: &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

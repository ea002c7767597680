package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   Credentials{Email: email, Password: password},
		result: &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The response body is not used.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   reg,
	})
}

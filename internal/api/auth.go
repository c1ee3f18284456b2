// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strings"
)

// =============================================================================
// AUTH
// =============================================================================

// Signup registers an account. Nothing is stored here; persisting the
// returned token is the session store's job.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "email and password are required"}
	}
	if req.Password != req.ConfirmPassword {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "passwords do not match"}
	}
	return c.authenticate(ctx, "/auth/signup", req)
}

// Signin exchanges credentials for a token.
func (c *Client) Signin(ctx context.Context, req SigninRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "email and password are required"}
	}
	return c.authenticate(ctx, "/auth/signin", req)
}

func (c *Client) authenticate(ctx context.Context, path string, in any) (*AuthResponse, error) {
	body, err := c.postJSON(ctx, c.config.AuthURL, path, in, c.config.RequestTimeout)
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "server returned no token"}
	}
	c.log.Info("authenticated", "path", path, "user", resp.User.DisplayName())
	return &resp, nil
}

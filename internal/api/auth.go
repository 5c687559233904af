package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pulse-cli/internal/model"
)

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	var u model.User
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", req, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	var tr TokenResponse
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", req, &tr); err != nil {
		return TokenResponse{}, err
	}
	if strings.TrimSpace(tr.AccessToken) == "" || strings.TrimSpace(tr.User.Email) == "" {
		return TokenResponse{}, fmt.Errorf("auth.login: %w: missing token or user", ErrInvalidResponse)
	}
	return tr, nil
}

type Health struct {
	Status string `json:"status"`
}

// Health calls GET /health (no auth required).
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, &h)
	return h, err
}

package comittesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a small client for the comitte service. It covers the auth and
// profile surface; the end-to-end tests drive the service through it.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates and returns the issued token plus member summary.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new member account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MemberResponse, error) {
	var out MemberResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the token. Revoking an already-revoked token succeeds.
func (c *Client) Logout(ctx context.Context, token string) (*LogoutResponse, error) {
	var out LogoutResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/logout", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionStatus reports whether the token's session is live. Checking
// status counts as activity on the session.
func (c *Client) SessionStatus(ctx context.Context, token string) (*SessionStatusResponse, error) {
	var out SessionStatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/auth/session-status", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated member's profile.
func (c *Client) Me(ctx context.Context, token string) (*UserSummary, error) {
	var out UserSummary
	if err := c.do(ctx, http.MethodGet, "/v1/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates the authenticated member's mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) (*MemberResponse, error) {
	var out MemberResponse
	if err := c.do(ctx, http.MethodPut, "/v1/me", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignRole grants a role to a member. Requires an admin token.
func (c *Client) AssignRole(ctx context.Context, token string, memberID int64, roleName string) error {
	path := fmt.Sprintf("/v1/members/%d/roles", memberID)
	return c.do(ctx, http.MethodPost, path, token, AssignRoleRequest{RoleName: roleName}, nil)
}

// RequestPasswordReset triggers the reset email for a member.
func (c *Client) RequestPasswordReset(ctx context.Context, usernameOrEmail string) error {
	return c.do(ctx, http.MethodPost, "/v1/password/request", "", PasswordResetRequest{
		UsernameOrEmail: usernameOrEmail,
	}, nil)
}

// ResetPassword completes a reset with either the emailed token or OTP.
func (c *Client) ResetPassword(ctx context.Context, req PasswordUpdateRequest) error {
	return c.do(ctx, http.MethodPost, "/v1/password/reset", "", req, nil)
}

// do performs one JSON request/response exchange. A nil body sends no
// payload; a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

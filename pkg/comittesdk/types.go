// Package comittesdk holds the request/response types for the comitte
// service API together with a small Go client. The server handlers and the
// client share these types so the wire contract lives in one place.
package comittesdk

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	// Error is a human-readable message. Authentication failures share a
	// deliberately small set of messages; see the gate.
	Error string `json:"error"`
}

// ValidationErrorResponse is returned when request validation fails.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// LoginRequest carries the credentials for POST /v1/auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password"        validate:"required"`
}

// UserSummary is the member profile embedded in login responses and
// returned by GET /v1/me.
type UserSummary struct {
	MemberID       int64    `json:"memberId"`
	Username       string   `json:"username"`
	Email          string   `json:"email,omitempty"`
	Name           string   `json:"name,omitempty"`
	Mobile         string   `json:"mobile,omitempty"`
	RoleIDs        []int64  `json:"roleIds,omitempty"`
	RoleNames      []string `json:"roleNames,omitempty"`
	AuthorityNames []string `json:"authorityNames,omitempty"`
}

// LoginResponse is the body for a successful login.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"` // always "Bearer"
	ExpiresIn   int64       `json:"expiresIn"` // milliseconds
	User        UserSummary `json:"user"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// SessionStatusResponse reports whether the session is still live and how
// long until it lapses through inactivity.
type SessionStatusResponse struct {
	Active           bool   `json:"active"`
	RemainingSeconds int64  `json:"remainingSeconds"`
	Message          string `json:"message"`
}

// RegisterRequest carries the profile for POST /v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"omitempty,max=128"`
	Mobile   string `json:"mobile"   validate:"omitempty,max=20"`
}

// MemberResponse is the created-member body for registration.
type MemberResponse struct {
	MemberID int64  `json:"memberId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

// UpdateProfileRequest carries the mutable fields for PUT /v1/me.
type UpdateProfileRequest struct {
	Name   string `json:"name"   validate:"omitempty,max=128"`
	Mobile string `json:"mobile" validate:"omitempty,max=20"`
}

// AssignRoleRequest grants a role to a member, POST /v1/members/{id}/roles.
type AssignRoleRequest struct {
	RoleName string `json:"roleName" validate:"required"`
}

// PasswordResetRequest asks for a reset email, POST /v1/password/request.
type PasswordResetRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
}

// PasswordUpdateRequest completes a reset, POST /v1/password/reset. Either
// the emailed token or usernameOrEmail+OTP identifies the member.
type PasswordUpdateRequest struct {
	Token           string `json:"token,omitempty"`
	UsernameOrEmail string `json:"usernameOrEmail,omitempty"`
	OTP             string `json:"otp,omitempty"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

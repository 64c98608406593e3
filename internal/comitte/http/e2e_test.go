package http

import (
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/internal/comitte/store/drivers/sqlite"
	"github.com/ls-softworks/comitte/pkg/comittesdk"
	"github.com/ls-softworks/comitte/pkg/cryptox"
	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
	"github.com/ls-softworks/comitte/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server *httptest.Server
	client *comittesdk.Client
	auth   *service.AuthService
	mailer *captureMailer
}

type captureMailer struct {
	token string
	otp   string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _ domain.Member, token, otp string) error {
	m.token = token
	m.otp = otp
	return nil
}

// newHarness spins up the full router over an in-memory store. window
// controls the session inactivity window so tests can force expiry quickly.
func newHarness(t *testing.T, window time.Duration) *harness {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	secret := make([]byte, 64)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(secret, "comitte-test")
	require.NoError(t, err)

	sessions := sessionx.NewTracker(window)
	logger := slogx.New(slogx.Config{Service: "comitte-test", Level: "error", Format: "text"})

	auth := &service.AuthService{
		Store:    st,
		Codec:    codec,
		Sessions: sessions,
		TokenTTL: time.Minute,
	}
	mailer := &captureMailer{}
	reset := &service.PasswordResetService{Store: st, Mailer: mailer}

	router := NewRouter(codec, sessions, "test", st, logger)
	router.AuthService = auth
	router.ResetService = reset
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &harness{
		server: server,
		client: comittesdk.NewClient(server.URL),
		auth:   auth,
		mailer: mailer,
	}
}

func (h *harness) register(t *testing.T, username, password string) *comittesdk.MemberResponse {
	t.Helper()
	member, err := h.client.Register(context.Background(), comittesdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Mobile:   "+614" + username,
		Name:     username,
		Password: password,
	})
	require.NoError(t, err)
	return member
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *comittesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	if message != "" {
		require.Equal(t, message, apiErr.Message)
	}
}

func TestLoginLogoutLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	h.register(t, "asha", "s3cret-pass")

	login, err := h.client.Login(ctx, "asha", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "Bearer", login.TokenType)
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, h.auth.TokenLifetime().Milliseconds(), login.ExpiresIn)
	require.Equal(t, "asha", login.User.Username)
	require.Contains(t, login.User.RoleNames, "ROLE_MEMBER")

	// Protected endpoint works while the session is live.
	me, err := h.client.Me(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, login.User.MemberID, me.MemberID)

	// Logout revokes the token.
	out, err := h.client.Logout(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "Logged out successfully", out.Message)
	require.NotZero(t, out.Timestamp)

	// The revoked token no longer reaches protected endpoints.
	_, err = h.client.Me(ctx, login.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Token has been invalidated. Please login again.")

	// Logout again: same acknowledgement, no error.
	out2, err := h.client.Logout(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "Logged out successfully", out2.Message)
}

func TestInactivityExpiresSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 500*time.Millisecond)
	h.register(t, "bala", "s3cret-pass")

	login, err := h.client.Login(ctx, "bala", "s3cret-pass")
	require.NoError(t, err)

	_, err = h.client.Me(ctx, login.AccessToken)
	require.NoError(t, err)

	time.Sleep(700 * time.Millisecond)

	// First request after the lapse reports inactivity and revokes the token.
	_, err = h.client.Me(ctx, login.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Session expired due to inactivity. Please login again.")

	// From then on the token reads as revoked.
	_, err = h.client.Me(ctx, login.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Token has been invalidated. Please login again.")

	// Session status still answers 200 and reports the lapsed session.
	status, err := h.client.SessionStatus(ctx, login.AccessToken)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Zero(t, status.RemainingSeconds)
}

func TestSessionStatusAfterLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	h.register(t, "cera", "s3cret-pass")

	login, err := h.client.Login(ctx, "cera", "s3cret-pass")
	require.NoError(t, err)

	status, err := h.client.SessionStatus(ctx, login.AccessToken)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Greater(t, status.RemainingSeconds, int64(0))

	_, err = h.client.Logout(ctx, login.AccessToken)
	require.NoError(t, err)

	// Status still answers 200, but reports the dead session.
	status, err = h.client.SessionStatus(ctx, login.AccessToken)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Zero(t, status.RemainingSeconds)
}

func TestUnauthenticatedRequests(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)

	t.Run("missing token", func(t *testing.T) {
		_, err := h.client.Me(ctx, "")
		requireAPIError(t, err, http.StatusUnauthorized, "Authentication required. Please provide a valid token.")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := h.client.Me(ctx, "not-a-jwt")
		requireAPIError(t, err, http.StatusUnauthorized, "Invalid or expired token.")
	})

	t.Run("wrong credentials", func(t *testing.T) {
		h.register(t, "dev", "s3cret-pass")
		_, err := h.client.Login(ctx, "dev", "wrong-password")
		requireAPIError(t, err, http.StatusUnauthorized, "Invalid username/email or password")
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)

	_, err := h.client.Register(ctx, comittesdk.RegisterRequest{
		Username: "x", // too short
		Email:    "not-an-email",
		Password: "short",
	})
	requireAPIError(t, err, http.StatusBadRequest, "")

	h.register(t, "eden", "s3cret-pass")
	_, err = h.client.Register(ctx, comittesdk.RegisterRequest{
		Username: "eden",
		Email:    "other@example.com",
		Mobile:   "+61400099999",
		Password: "s3cret-pass",
	})
	requireAPIError(t, err, http.StatusConflict, "")
}

func TestProfileUpdate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	h.register(t, "fern", "s3cret-pass")

	login, err := h.client.Login(ctx, "fern", "s3cret-pass")
	require.NoError(t, err)

	updated, err := h.client.UpdateProfile(ctx, login.AccessToken, comittesdk.UpdateProfileRequest{
		Name:   "Fern W",
		Mobile: "+61400012345",
	})
	require.NoError(t, err)
	require.Equal(t, "Fern W", updated.Name)
	require.Equal(t, "+61400012345", updated.Mobile)

	me, err := h.client.Me(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "Fern W", me.Name)
}

func TestRoleAssignmentRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)

	admin := h.register(t, "gia", "s3cret-pass")
	member := h.register(t, "hale", "s3cret-pass")

	// Promote gia directly through the service; bootstrap has no HTTP path.
	require.NoError(t, h.auth.AssignRole(ctx, admin.MemberID, domain.RoleAdmin, admin.MemberID))

	memberLogin, err := h.client.Login(ctx, "hale", "s3cret-pass")
	require.NoError(t, err)

	err = h.client.AssignRole(ctx, memberLogin.AccessToken, member.MemberID, domain.RoleAdmin)
	requireAPIError(t, err, http.StatusForbidden, "")

	adminLogin, err := h.client.Login(ctx, "gia", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, h.client.AssignRole(ctx, adminLogin.AccessToken, member.MemberID, domain.RoleAdmin))

	// The new role shows up on the member's profile immediately, because
	// the profile reads the store.
	me, err := h.client.Me(ctx, memberLogin.AccessToken)
	require.NoError(t, err)
	require.Contains(t, me.RoleNames, "ROLE_ADMIN")

	// But the authorization check reads the token's login-time claims, so
	// the old token still cannot perform admin operations until re-login.
	err = h.client.AssignRole(ctx, memberLogin.AccessToken, admin.MemberID, domain.RoleAdmin)
	requireAPIError(t, err, http.StatusForbidden, "")

	relogin, err := h.client.Login(ctx, "hale", "s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, h.client.AssignRole(ctx, relogin.AccessToken, admin.MemberID, domain.RoleAdmin))
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	h.register(t, "ivy", "old-password")

	require.NoError(t, h.client.RequestPasswordReset(ctx, "ivy"))
	require.NotEmpty(t, h.mailer.token)

	require.NoError(t, h.client.ResetPassword(ctx, comittesdk.PasswordUpdateRequest{
		Token:       h.mailer.token,
		NewPassword: "new-password",
	}))

	_, err := h.client.Login(ctx, "ivy", "old-password")
	requireAPIError(t, err, http.StatusUnauthorized, "")

	_, err = h.client.Login(ctx, "ivy", "new-password")
	require.NoError(t, err)

	// Unknown identifiers get the same acknowledgement.
	require.NoError(t, h.client.RequestPasswordReset(ctx, "nobody"))
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, 0)

	resp, err := http.Get(h.server.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(h.server.URL + "/readyz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
}

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/repotest"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	tokens := NewTokenManager("secret", 60)
	mw := NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(string(p.User.Role))
	})
	app.Get("/support", mw.Handle, RequireRole(domain.RoleSupport), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokens, store
}

func TestAuthMiddleware_RejectsBadHeaders(t *testing.T) {
	app, _, _ := newProtectedApp(t)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestAuthMiddleware_UsesStoredRole(t *testing.T) {
	app, tokens, store := newProtectedApp(t)
	user := &domain.User{Name: "Ann", Email: "ann@x.io", Role: domain.RoleClient}
	require.NoError(t, store.Users().Create(context.Background(), user))

	forged := *user
	forged.Role = domain.RoleSupport
	token, _, err := tokens.GenerateToken(&forged)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/support", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	app, tokens, _ := newProtectedApp(t)
	token, _, err := tokens.GenerateToken(&domain.User{ID: "ghost", Role: domain.RoleSupport})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Success(t *testing.T) {
	app, tokens, store := newProtectedApp(t)
	user := &domain.User{Name: "Sam", Email: "sam@x.io", Role: domain.RoleSupport}
	require.NoError(t, store.Users().Create(context.Background(), user))
	token, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/support", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

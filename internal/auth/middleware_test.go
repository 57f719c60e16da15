package auth

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suportehub/helpdesk-service/internal/domain"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}
func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (r *stubUserRepo) Delete(ctx context.Context, id string) error     { return nil }

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", 15)
	repo := &stubUserRepo{users: map[string]*domain.User{
		"USR-1": {ID: "USR-1", Name: "Suporte", Role: domain.UserRoleAgent},
		"USR-2": {ID: "USR-2", Name: "Joao", Role: domain.UserRoleRequester},
	}}
	middleware := NewAuthMiddleware(tokens, repo)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": domainErr.Code}})
		},
	})
	app.Get("/agent-only", middleware.Handle, RequireAgent(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"data": principal.User.ID})
	})
	return app, tokens
}

func bearerRequest(token string) *nethttp.Request {
	req := httptest.NewRequest(nethttp.MethodGet, "/agent-only", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddlewareAllowsAgent(t *testing.T) {
	app, tokens := newProtectedApp(t)
	token, _, err := tokens.GenerateToken("USR-1", domain.UserRoleAgent)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(token))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareForbidsRequesterOnAgentRoute(t *testing.T) {
	app, tokens := newProtectedApp(t)
	token, _, err := tokens.GenerateToken("USR-2", domain.UserRoleRequester)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(token))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	app, tokens := newProtectedApp(t)

	resp, err := app.Test(bearerRequest(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(bearerRequest("garbage"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	// Valid token whose subject no longer exists.
	token, _, err := tokens.GenerateToken("USR-404", domain.UserRoleAgent)
	require.NoError(t, err)
	resp, err = app.Test(bearerRequest(token))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

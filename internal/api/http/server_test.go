package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/repotest"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type testServer struct {
	app     *fiber.App
	store   *repotest.Store
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimiter(t, nil)
}

func newTestServerWithLimiter(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	store := repotest.NewStore()
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	cfg := config.Config{
		App:  config.AppConfig{Name: "helpdesk-service", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
	}

	authService := service.NewAuthService(cfg, store.Users())
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		UserRepo:    store.Users(),
		CommentRepo: store.Comments(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  store.Tickets(),
		CommentRepo: store.Comments(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	companyService := service.NewCompanyService(store.Companies(), store.Users())

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Companies:      handlers.NewCompaniesHandler(companyService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		AuthRateLimit:  limiter,
	})

	return &testServer{app: app, store: store, tokens: authService.TokenManager(), metrics: metrics}
}

type testUser struct {
	*domain.User
	token string
}

func (s *testServer) user(t *testing.T, name string, role domain.Role, companyID *string) testUser {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, s.store.Users().Create(context.Background(), u))
	if companyID != nil {
		require.NoError(t, s.store.Users().SetCompany(context.Background(), u.ID, companyID))
		u.CompanyID = companyID
	}
	token, _, err := s.tokens.GenerateToken(u)
	require.NoError(t, err)
	return testUser{User: u, token: token}
}

func (s *testServer) company(t *testing.T, name string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name}
	require.NoError(t, s.store.Companies().Create(context.Background(), c))
	return c
}

type response struct {
	status int
	header map[string]string
	body   []byte
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) list(t *testing.T) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) errorCode(t *testing.T) string {
	t.Helper()
	errBody, ok := r.object(t)["error"].(map[string]any)
	require.True(t, ok, string(r.body))
	return errBody["code"].(string)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return response{status: resp.StatusCode, header: headers, body: raw}
}

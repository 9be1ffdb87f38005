package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func testRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	authed := router.Group("/", AuthMiddleware(cfg))
	authed.GET("/me", func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.String(http.StatusOK, string(claims.Role))
	})
	admin := router.Group("/admin", AuthMiddleware(cfg), RoleMiddleware(model.RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func tokenFor(t *testing.T, role model.UserRole, cfg *config.Config) string {
	t.Helper()
	user := &model.User{Role: role}
	user.ID = "u1"
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret-unit-test-secret"
	return cfg
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	cfg := testConfig()
	router := testRouter(cfg)

	if w := get(router, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", w.Code)
	}
	if w := get(router, "/me", "not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: got %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	router := testRouter(cfg)

	w := get(router, "/me", tokenFor(t, model.RoleStudent, cfg))
	if w.Code != http.StatusOK || w.Body.String() != "student" {
		t.Fatalf("got %d %q, want 200 student", w.Code, w.Body.String())
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	router := testRouter(cfg)

	if w := get(router, "/admin/ping", tokenFor(t, model.RoleStudent, cfg)); w.Code != http.StatusForbidden {
		t.Fatalf("student on admin route: got %d, want 403", w.Code)
	}
	if w := get(router, "/admin/ping", tokenFor(t, model.RoleAdmin, cfg)); w.Code != http.StatusOK {
		t.Fatalf("admin on admin route: got %d, want 200", w.Code)
	}
}

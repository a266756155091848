package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/services"
)

const routerSecret = "router-test-secret"

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Environment:              "test",
		JWTSecret:                routerSecret,
		AllowedOrigins:           []string{"http://localhost:5173"},
		EnableEmailNotifications: false,
	}
	svcs := &services.Services{
		Tenant: services.NewTenantService(newMockTenantRepo(sampleTenant()), nil),
		Email:  services.NewEmailService(cfg),
	}
	return NewRouter(NewHandlers(svcs), cfg)
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"email":   "user@example.com",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(routerSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func authed(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := authed(testRouter(t), http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"arrendando-api","version":"1.0.0"}`, w.Body.String())
}

func TestRouter_Authorization(t *testing.T) {
	r := testRouter(t)
	user := bearer(t, models.RoleUser)

	tests := []struct {
		name string
		path string
		auth string
		code int
	}{
		{"missing token", "/api/v1/tenants", "", http.StatusUnauthorized},
		{"malformed header", "/api/v1/tenants", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "/api/v1/tenants", "Bearer eyJhbGciOiJIUzI1NiJ9.e30.bad", http.StatusUnauthorized},
		{"user lists tenants", "/api/v1/tenants", user, http.StatusOK},
		{"user on admin route", "/api/v1/auth/users", user, http.StatusForbidden},
		{"user on audits", "/api/v1/audits", user, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authed(r, http.MethodGet, tt.path, tt.auth)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestRouter_ContactAlwaysAnswers200(t *testing.T) {
	r := testRouter(t)

	w := perform(r, http.MethodPost, "/api/v1/contact/send-email", map[string]string{
		"name":    "Ana",
		"email":   "ana@example.com",
		"message": "Hola, quisiera información",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error al enviar el email"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/api/v1/contact/send-email", map[string]string{"name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tenants", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_LogoutRequiresToken(t *testing.T) {
	r := testRouter(t)

	w := authed(r, http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = authed(r, http.MethodPost, "/api/v1/auth/logout", bearer(t, models.RoleUser))
	assert.Equal(t, http.StatusBadRequest, w.Code, "authenticated request reaches the handler")
	assert.JSONEq(t, `{"error":"Refresh token es requerido"}`, w.Body.String())
}

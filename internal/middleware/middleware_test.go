package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("", Auth(testSecret))
	group.GET("/me", func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": GetUserRole(c)})
	})
	group.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	valid := signToken(t, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "admin@example.com",
		"role":    models.RoleAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	expired := signToken(t, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testSecret)
	wrongKey := signToken(t, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, "other-secret")
	badSubject := signToken(t, jwt.MapClaims{
		"user_id": "42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	tests := []struct {
		name       string
		url        string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "Se requiere el encabezado Authorization"},
		{"bad format", "/me", "Token " + valid, http.StatusUnauthorized, "Formato de encabezado Authorization inválido"},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized, "token expirado"},
		{"wrong key", "/me", "Bearer " + wrongKey, http.StatusUnauthorized, "token inválido"},
		{"non uuid subject", "/me", "Bearer " + badSubject, http.StatusUnauthorized, "token inválido"},
		{"valid header", "/me", "Bearer " + valid, http.StatusOK, ""},
		{"valid query token", "/me?token=" + valid, "", http.StatusOK, ""},
	}

	router := protectedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, userID.String(), body["id"])
			assert.Equal(t, models.RoleAdmin, body["role"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	router := protectedRouter()

	for role, want := range map[string]int{
		models.RoleAdmin: http.StatusNoContent,
		models.RoleUser:  http.StatusForbidden,
	} {
		t.Run(role, func(t *testing.T) {
			token := signToken(t, jwt.MapClaims{
				"user_id": uuid.NewString(),
				"role":    role,
				"exp":     time.Now().Add(time.Hour).Unix(),
			}, testSecret)
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, want, w.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		wantStatus  int
		wantAllowed string
	}{
		{"wildcard", []string{"*"}, "http://console.local", http.MethodGet, http.StatusOK, "*"},
		{"listed origin", []string{"http://console.local"}, "http://console.local", http.MethodGet, http.StatusOK, "http://console.local"},
		{"unlisted origin", []string{"http://console.local"}, "http://evil.local", http.MethodGet, http.StatusOK, ""},
		{"preflight", []string{"*"}, "http://console.local", http.MethodOptions, http.StatusNoContent, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.allowed))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "3xx", statusCategory(304))
	assert.Equal(t, "4xx", statusCategory(422))
	assert.Equal(t, "5xx", statusCategory(503))
}

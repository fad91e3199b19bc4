package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/service"
)

func newJWTTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(nil, nil, zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
	})

	router := gin.New()
	router.GET("/protected", JWT(svc), func(c *gin.Context) {
		claims := c.MustGet(ContextOfficerKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.OfficerID)
	})
	return router
}

func signTestToken(t *testing.T, secret string, issuedAt, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JWTClaims{
		OfficerID: "off-1",
		Role:      models.RoleOfficer,
		Email:     "officer@agency.gov",
		FullName:  "Dana Smith",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "off-1",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func getProtected(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	router := newJWTTestRouter()

	resp := getProtected(router, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	router := newJWTTestRouter()

	resp := getProtected(router, "Token abc123")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Contains(t, resp.Body.String(), "invalid authorization header")
}

func TestJWTMiddlewareForgedToken(t *testing.T) {
	router := newJWTTestRouter()

	now := time.Now().UTC()
	forged := signTestToken(t, "other-secret", now, now.Add(time.Hour))
	resp := getProtected(router, "Bearer "+forged)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	router := newJWTTestRouter()

	now := time.Now().UTC()
	expired := signTestToken(t, "test-secret", now.Add(-2*time.Hour), now.Add(-time.Hour))
	resp := getProtected(router, "Bearer "+expired)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	router := newJWTTestRouter()

	now := time.Now().UTC()
	token := signTestToken(t, "test-secret", now, now.Add(time.Hour))
	resp := getProtected(router, "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "off-1", resp.Body.String())
}

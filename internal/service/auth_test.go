package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthRouter(a *AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", a.AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	r.GET("/cron", a.CronMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doGet(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	a := NewAuthService(zap.NewNop(), "secret", "cron-secret")
	r := newAuthRouter(a)

	token, err := a.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	w := doGet(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer not-a-jwt").Code)

	other := NewAuthService(zap.NewNop(), "other-secret", "")
	forged, err := other.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer "+forged).Code)
}

func TestValidateToken(t *testing.T) {
	a := NewAuthService(zap.NewNop(), "secret", "")

	expired, err := a.GenerateToken("user-1", -time.Minute)
	require.NoError(t, err)
	_, err = a.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = a.ValidateToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.ValidateToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unconfigured := NewAuthService(zap.NewNop(), "", "")
	_, err = unconfigured.GenerateToken("user-1", time.Hour)
	assert.Error(t, err)
}

func TestCronMiddleware(t *testing.T) {
	r := newAuthRouter(NewAuthService(zap.NewNop(), "secret", "cron-secret"))

	assert.Equal(t, http.StatusOK, doGet(r, "/cron", "Bearer cron-secret").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/cron", "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/cron", "").Code)

	open := newAuthRouter(NewAuthService(zap.NewNop(), "secret", ""))
	assert.Equal(t, http.StatusUnauthorized, doGet(open, "/cron", "Bearer ").Code)
}

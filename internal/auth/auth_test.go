package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const key = "test-secret"

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("admin@skygym.local", key, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := Parse(token, key)
	require.NoError(t, err)
	assert.Equal(t, "admin@skygym.local", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = Parse(token, "other")
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, _, err := Issue("admin", key, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(token, key)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongIssuer(t *testing.T) {
	claims := Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	_, err = Parse(token, key)
	assert.Error(t, err)
}

func TestAdminVerify(t *testing.T) {
	plain := Admin{Email: "admin@skygym.local", Password: "secret"}
	assert.True(t, plain.Verify("Admin@SkyGym.local", "secret"))
	assert.False(t, plain.Verify("admin@skygym.local", "nope"))
	assert.False(t, plain.Verify("other@skygym.local", "secret"))
	assert.False(t, plain.Verify("admin@skygym.local", ""))

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := Admin{Email: "admin@skygym.local", Password: "ignored", PasswordHash: string(hash)}
	assert.True(t, hashed.Verify("admin@skygym.local", "hashed"))
	assert.False(t, hashed.Verify("admin@skygym.local", "ignored"))

	assert.False(t, Admin{}.Verify("", ""))
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/", RequireSession(key))
	protected.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "dash") })
	protected.POST("/api/scan/check-in", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRequireSession(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scan/check-in", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Unauthorized."}`, rec.Body.String())

	token, _, err := Issue("admin", key, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dash", rec.Body.String())
}

func TestSetSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	SetSession(c, "tok", 8*time.Hour, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 8*3600, cookies[0].MaxAge)
}

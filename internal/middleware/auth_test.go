package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"trainer": c.MustGet(ContextTrainerID).(uint),
			"club":    c.MustGet(ContextClubID).(uint),
			"role":    c.MustGet(ContextUserRole).(string),
		})
	})
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	tok := sign(t, jwt.MapClaims{
		"sub":    7,
		"clubId": 1,
		"role":   "trainer",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, secret)

	w := do(newRouter(), "Bearer "+tok)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"trainer":7,"club":1,"role":"trainer"}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r := newRouter()

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"bad sig":      "Bearer " + sign(t, jwt.MapClaims{"sub": 1, "clubId": 1}, "other"),
		"expired":      "Bearer " + sign(t, jwt.MapClaims{"sub": 1, "clubId": 1, "exp": time.Now().Add(-time.Hour).Unix()}, secret),
		"missing club": "Bearer " + sign(t, jwt.MapClaims{"sub": 1}, secret),
	}

	for name, header := range cases {
		w := do(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

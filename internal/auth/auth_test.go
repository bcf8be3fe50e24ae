package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	token, err := SignJWT(secret, 7, "rex", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(secret, token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "rex", claims.Username)
}

func TestParseRejects(t *testing.T) {
	expired, err := SignJWT(secret, 7, "rex", -time.Minute)
	require.NoError(t, err)
	other, err := SignJWT([]byte("other"), 7, "rex", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJWT(secret, token)
			require.Error(t, err)
		})
	}
}

func TestSignRejectsBadID(t *testing.T) {
	_, err := SignJWT(secret, 0, "rex", time.Hour)
	require.Error(t, err)
}

func TestRequireJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireJWT(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "name": c.GetString(CtxUsernameKey)})
	})

	token, err := SignJWT(secret, 3, "rex", time.Hour)
	require.NoError(t, err)

	testCases := []struct {
		desc   string
		header string
		query  string
		want   int
	}{
		{desc: "header", header: "Bearer " + token, want: http.StatusOK},
		{desc: "query", query: "?token=" + token, want: http.StatusOK},
		{desc: "missing", want: http.StatusUnauthorized},
		{desc: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{desc: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				require.JSONEq(t, `{"id":3,"name":"rex"}`, w.Body.String())
			}
		})
	}
}

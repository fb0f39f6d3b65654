package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pantiss/config"
	"Pantiss/pkg/token"
)

func newAuthEngine(t *testing.T) *server.Hertz {
	t.Helper()
	config.Cfg.JWTSecret = "middleware-test-secret"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	require.NoError(t, token.Init())
	require.NoError(t, initAuthMiddleware())

	h := server.New()
	h.GET("/me", AuthMiddleware(), func(ctx context.Context, c *app.RequestContext) {
		id, _ := GetAccountID(ctx, c)
		c.String(http.StatusOK, id)
	})
	return h
}

func TestAuthMiddleware(t *testing.T) {
	h := newAuthEngine(t)
	pair, err := token.GenerateTokenPair("1001", "seeker")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var headers []ut.Header
			if tc.header != "" {
				headers = append(headers, ut.Header{Key: "Authorization", Value: tc.header})
			}
			w := ut.PerformRequest(h.Engine, http.MethodGet, "/me", nil, headers...)
			resp := w.Result()
			assert.Equal(t, tc.status, resp.StatusCode())
			if tc.status == http.StatusOK {
				assert.Equal(t, "1001", string(resp.Body()))
			}
		})
	}
}

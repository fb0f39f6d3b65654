package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"Pantiss/config"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/response"
)

const csrfSessionName = "pantiss-csrf"

// CSRFMiddleware 会话 cookie 加 CSRF 校验，GET 等安全方法不校验。
// 未开启时返回空切片，调用方可直接展开。
func CSRFMiddleware() []app.HandlerFunc {
	cfg := config.Cfg
	if !cfg.CSRFEnabled {
		return nil
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		MaxAge:   cfg.WizardTTLMinutes * 60,
	})

	return []app.HandlerFunc{
		sessions.New(csrfSessionName, store),
		csrf.New(
			csrf.WithSecret(cfg.CSRFSecret),
			csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
				response.Error(ctx, c, errors.CSRFInvalid)
				c.Abort()
			}),
		),
	}
}

// CSRFToken 下发当前会话的 token，前端放入 X-CSRF-TOKEN 头
func CSRFToken(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"csrf_token": csrf.GetToken(c)})
}

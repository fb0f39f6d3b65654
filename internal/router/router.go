package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Pantiss/config"
	"Pantiss/internal/handler"
	"Pantiss/internal/middleware"
)

func Register(h *server.Hertz, hd *handler.Handler) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Health)

	if config.Cfg.PrometheusEnabled {
		h.GET("/metrics", adaptor.HertzHandler(promhttp.Handler()))
	}

	v1 := h.Group("/v1")

	// 浏览器同源部署时开启，移动端客户端不需要
	if csrf := middleware.CSRFMiddleware(); len(csrf) > 0 {
		v1.Use(csrf...)
		v1.GET("/csrf-token", middleware.CSRFToken)
	}

	v1.GET("/catalog", hd.GetCatalog)

	// 注册向导
	wizards := v1.Group("/wizards", middleware.WizardRateLimitMiddleware())
	{
		wizards.POST("", hd.CreateWizard)
		wizards.GET("/:id", hd.GetWizard)
		wizards.DELETE("/:id", hd.DiscardWizard)
		wizards.POST("/:id/signup", hd.BeginSignup)
		wizards.POST("/:id/submit", hd.SubmitStep)
		wizards.POST("/:id/back", hd.Back)
		wizards.POST("/:id/codes", middleware.CodeRateLimitMiddleware(), hd.SendCode)

		experience := wizards.Group("/:id/experience")
		{
			experience.POST("/fresher", hd.SetFresher)
			experience.POST("/records", hd.AddRecord)
			experience.PUT("/records/:index", hd.UpdateRecord)
			experience.DELETE("/records/:index", hd.RemoveRecord)
		}

		icard := wizards.Group("/:id/icard")
		{
			icard.GET("", hd.GetICard)
			icard.POST("/confirm", hd.ConfirmICard)
			icard.POST("/complete", hd.CompleteICard)
		}
	}

	auth := v1.Group("/auth", middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/token/refresh", hd.RefreshToken)
	}

	accounts := v1.Group("/accounts", middleware.AuthMiddleware())
	{
		accounts.GET("/me", hd.GetMe)
	}
}

package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"Pantiss/internal/service"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/response"
)

// Handler HTTP 入口，只做参数解析和响应封装
type Handler struct {
	wizards  *service.OnboardingService
	accounts *service.AccountService
}

func New(wizards *service.OnboardingService, accounts *service.AccountService) *Handler {
	return &Handler{wizards: wizards, accounts: accounts}
}

func wizardID(c *app.RequestContext) string {
	return c.Param("id")
}

// recordIndex 解析 :index，非数字按越界处理
func recordIndex(ctx context.Context, c *app.RequestContext) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(ctx, c, errors.ExperienceIndexInvalid)
		return 0, false
	}
	return index, true
}

// reply 统一处理 (data, err)
func reply(ctx context.Context, c *app.RequestContext, data interface{}, err error) {
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

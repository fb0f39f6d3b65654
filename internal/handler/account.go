package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Pantiss/internal/middleware"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/response"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func (h *Handler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req refreshRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.RefreshToken == "" {
		response.Error(ctx, c, errors.TokenInvalid)
		return
	}

	pair, err := h.accounts.Refresh(ctx, req.RefreshToken)
	reply(ctx, c, pair, err)
}

// GetMe 个人主页
// GET /v1/accounts/me
func (h *Handler) GetMe(ctx context.Context, c *app.RequestContext) {
	accountID, ok := middleware.GetAccountID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	view, err := h.accounts.Me(ctx, accountID)
	reply(ctx, c, view, err)
}

// GetCatalog 各步骤可选项
// GET /v1/catalog
func (h *Handler) GetCatalog(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, h.accounts.Catalog())
}

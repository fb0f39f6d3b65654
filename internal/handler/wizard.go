package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Pantiss/internal/model"
	"Pantiss/internal/service"
	"Pantiss/pkg/response"
)

type createWizardRequest struct {
	Kind model.AccountKind `json:"kind"`
}

// CreateWizard 新建注册向导
// POST /v1/wizards
func (h *Handler) CreateWizard(ctx context.Context, c *app.RequestContext) {
	var req createWizardRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	view, err := h.wizards.Create(ctx, req.Kind)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, view)
}

// GetWizard 查看向导
// GET /v1/wizards/:id
func (h *Handler) GetWizard(ctx context.Context, c *app.RequestContext) {
	view, err := h.wizards.Get(ctx, wizardID(c))
	reply(ctx, c, view, err)
}

// DiscardWizard 离开向导，草稿丢弃
// DELETE /v1/wizards/:id
func (h *Handler) DiscardWizard(ctx context.Context, c *app.RequestContext) {
	if err := h.wizards.Discard(ctx, wizardID(c)); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// BeginSignup 登录页进入注册
// POST /v1/wizards/:id/signup
func (h *Handler) BeginSignup(ctx context.Context, c *app.RequestContext) {
	view, err := h.wizards.BeginSignup(ctx, wizardID(c))
	reply(ctx, c, view, err)
}

// SubmitStep 提交当前步骤，请求体按步骤解析
// POST /v1/wizards/:id/submit
func (h *Handler) SubmitStep(ctx context.Context, c *app.RequestContext) {
	res, err := h.wizards.Submit(ctx, wizardID(c), c.Request.Body())
	reply(ctx, c, res, err)
}

// Back 后退一步
// POST /v1/wizards/:id/back
func (h *Handler) Back(ctx context.Context, c *app.RequestContext) {
	view, err := h.wizards.Back(ctx, wizardID(c))
	reply(ctx, c, view, err)
}

// SendCode 发送邮箱或手机验证码
// POST /v1/wizards/:id/codes
func (h *Handler) SendCode(ctx context.Context, c *app.RequestContext) {
	var req service.SendCodeRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	view, err := h.wizards.SendCode(ctx, wizardID(c), req, c.ClientIP())
	reply(ctx, c, view, err)
}

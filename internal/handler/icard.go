package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

// GetICard GET /v1/wizards/:id/icard
func (h *Handler) GetICard(ctx context.Context, c *app.RequestContext) {
	card, err := h.wizards.ICard(ctx, wizardID(c))
	reply(ctx, c, card, err)
}

// ConfirmICard POST /v1/wizards/:id/icard/confirm
func (h *Handler) ConfirmICard(ctx context.Context, c *app.RequestContext) {
	card, err := h.wizards.ConfirmICard(ctx, wizardID(c))
	reply(ctx, c, card, err)
}

// CompleteICard 求职者最终提交
// POST /v1/wizards/:id/icard/complete
func (h *Handler) CompleteICard(ctx context.Context, c *app.RequestContext) {
	res, err := h.wizards.CompleteICard(ctx, wizardID(c))
	reply(ctx, c, res, err)
}

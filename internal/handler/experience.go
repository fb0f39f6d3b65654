package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Pantiss/internal/model"
	"Pantiss/pkg/response"
)

type fresherRequest struct {
	Fresher bool `json:"fresher"`
}

// SetFresher POST /v1/wizards/:id/experience/fresher
func (h *Handler) SetFresher(ctx context.Context, c *app.RequestContext) {
	var req fresherRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	view, err := h.wizards.SetFresher(ctx, wizardID(c), req.Fresher)
	reply(ctx, c, view, err)
}

// AddRecord POST /v1/wizards/:id/experience/records
func (h *Handler) AddRecord(ctx context.Context, c *app.RequestContext) {
	view, err := h.wizards.AddRecord(ctx, wizardID(c))
	reply(ctx, c, view, err)
}

// UpdateRecord PUT /v1/wizards/:id/experience/records/:index
func (h *Handler) UpdateRecord(ctx context.Context, c *app.RequestContext) {
	index, ok := recordIndex(ctx, c)
	if !ok {
		return
	}
	var rec model.EmploymentRecord
	if err := c.BindJSON(&rec); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	view, err := h.wizards.UpdateRecord(ctx, wizardID(c), index, rec)
	reply(ctx, c, view, err)
}

// RemoveRecord DELETE /v1/wizards/:id/experience/records/:index
func (h *Handler) RemoveRecord(ctx context.Context, c *app.RequestContext) {
	index, ok := recordIndex(ctx, c)
	if !ok {
		return
	}
	view, err := h.wizards.RemoveRecord(ctx, wizardID(c), index)
	reply(ctx, c, view, err)
}

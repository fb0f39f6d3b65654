package response

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// fieldError 由校验失败的错误实现，字段路径 -> 提示信息
type fieldError interface {
	error
	Fields() map[string]string
}

func errorToHTTPStatus(def errors.Definition) int {
	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case errors.ValidationFailed.Code:
		return http.StatusUnprocessableEntity // 422
	case errors.CaptchaRateLimited.Code, errors.VerificationSliderRequired.Code, errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	case errors.InvalidRequest.Code, errors.VerificationCodeInvalid.Code,
		errors.VerificationSliderFailed.Code, errors.CodeChannelInvalid.Code,
		errors.WizardKindInvalid.Code, errors.ExperienceIndexInvalid.Code,
		errors.InvalidUserID.Code:
		return http.StatusBadRequest // 400
	case errors.LoginFailed.Code, errors.Unauthorized.Code, errors.TokenInvalid.Code:
		return http.StatusUnauthorized // 401
	case errors.CSRFInvalid.Code:
		return http.StatusForbidden // 403
	case errors.WizardNotFound.Code, errors.AccountNotFound.Code:
		return http.StatusNotFound // 404
	case errors.EmailAlreadyRegistered.Code, errors.WizardStepInvalid.Code,
		errors.WizardBusy.Code, errors.ICardNotConfirmed.Code:
		return http.StatusConflict // 409
	case errors.CodeDispatchFailed.Code:
		return http.StatusBadGateway // 502
	case errors.Unavailable.Code:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// resolve 把任意 error 归一为 Definition 和可选的 details
func resolve(err error) (errors.Definition, map[string]interface{}) {
	var fe fieldError
	if stderrors.As(err, &fe) {
		details := make(map[string]interface{}, len(fe.Fields()))
		for k, v := range fe.Fields() {
			details[k] = v
		}
		return errors.ValidationFailed, details
	}

	var def errors.Definition
	if stderrors.As(err, &def) {
		return def, nil
	}

	return errors.Internal, nil
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	def, details := resolve(err)
	statusCode := errorToHTTPStatus(def)

	if statusCode >= http.StatusInternalServerError {
		logger.Logger.Error("Request failed",
			zap.String("path", string(c.Path())),
			zap.Error(err),
		)
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
			Details: details,
		},
	})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	def, _ := resolve(err)

	c.JSON(errorToHTTPStatus(def), ErrorResponse{
		Error: ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}

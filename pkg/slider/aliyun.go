package slider

import (
	"context"
	"fmt"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/aliyun"
	"Pantiss/pkg/logger"
)

// AliyunClient 阿里云智能验证码 2.0
type AliyunClient struct {
	api     *captcha.Client
	sceneID string
	log     *zap.Logger
}

func NewAliyunClient(cfg config.Config) (*AliyunClient, error) {
	if cfg.CaptchaSceneID == "" {
		return nil, fmt.Errorf("CAPTCHA_SCENE_ID is required for aliyun captcha")
	}

	apiCfg, err := aliyun.OpenAPIConfig(cfg, cfg.CaptchaEndpoint)
	if err != nil {
		return nil, err
	}
	api, err := captcha.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create captcha client: %w", err)
	}

	return &AliyunClient{
		api:     api,
		sceneID: cfg.CaptchaSceneID,
		log:     logger.Component("slider").With(zap.String("scene", cfg.CaptchaSceneID)),
	}, nil
}

// Verify token 为前端组件回传的 CaptchaVerifyParam
func (c *AliyunClient) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, ErrTokenRequired
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	resp, err := c.api.VerifyIntelligentCaptcha(&captcha.VerifyIntelligentCaptchaRequest{
		CaptchaVerifyParam: tea.String(token),
		SceneId:            tea.String(c.sceneID),
	})
	if err != nil {
		c.log.Error("Captcha request failed", zap.String("remote_ip", remoteIP), zap.Error(err))
		return false, fmt.Errorf("verify captcha: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return false, ErrResponseNil
	}

	body := resp.Body
	if body.Result != nil && tea.BoolValue(body.Result.VerifyResult) {
		c.log.Debug("Captcha passed", zap.String("remote_ip", remoteIP))
		return true, nil
	}

	code := tea.StringValue(body.Code)
	c.log.Warn("Captcha rejected",
		zap.String("code", code),
		zap.String("message", tea.StringValue(body.Message)),
		zap.String("remote_ip", remoteIP),
	)
	if code != "" && code != "200" {
		return false, fmt.Errorf("%w: %s", ErrVerificationFailed, code)
	}
	return false, ErrVerificationFailed
}

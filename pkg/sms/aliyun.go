package sms

import (
	"context"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	openapiutil "github.com/alibabacloud-go/openapi-util/service"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/aliyun"
	"Pantiss/pkg/logger"
	"Pantiss/utils"
)

// 号码统一是 10 位印度手机号，国际短信需要带国家码
const countryCode = "91"

// sendSMS dysmsapi 2017-05-25 的 SendSms 接口
var sendSMS = &openapi.Params{
	Action:      tea.String("SendSms"),
	Version:     tea.String("2017-05-25"),
	Protocol:    tea.String("HTTPS"),
	Method:      tea.String("POST"),
	AuthType:    tea.String("AK"),
	Style:       tea.String("RPC"),
	Pathname:    tea.String("/"),
	ReqBodyType: tea.String("json"),
	BodyType:    tea.String("json"),
}

type AliyunClient struct {
	api     *openapi.Client
	runtime *util.RuntimeOptions
	log     *zap.Logger
}

func NewAliyunClient(cfg config.Config) (*AliyunClient, error) {
	apiCfg, err := aliyun.OpenAPIConfig(cfg, cfg.SMSEndpoint)
	if err != nil {
		return nil, err
	}
	api, err := openapi.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create sms client: %w", err)
	}

	return &AliyunClient{
		api: api,
		runtime: &util.RuntimeOptions{
			ConnectTimeout: tea.Int(3000),
			ReadTimeout:    tea.Int(5000),
		},
		log: logger.Component("sms"),
	}, nil
}

func (c *AliyunClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if signName == "" || templateCode == "" {
		return fmt.Errorf("sms sign name and template code are required")
	}

	req := &openapi.OpenApiRequest{
		Query: openapiutil.Query(map[string]interface{}{
			"PhoneNumbers":  tea.String(countryCode + phone),
			"SignName":      tea.String(signName),
			"TemplateCode":  tea.String(templateCode),
			"TemplateParam": tea.String(templateParam),
		}),
	}

	masked := utils.MaskDigits(phone, 4)
	resp, err := c.api.CallApi(sendSMS, req, c.runtime)
	if err != nil {
		c.log.Error("SMS request failed", zap.String("phone", masked), zap.String("template", templateCode), zap.Error(err))
		return fmt.Errorf("send sms: %w", err)
	}

	if status, ok := resp["statusCode"].(int); ok && status != 200 {
		c.log.Error("SMS API returned non-200", zap.Int("status", status), zap.Any("body", resp["body"]))
		return fmt.Errorf("sms api status %d", status)
	}

	// 业务错误在 body.Code 里，HTTP 状态仍然是 200
	if body, ok := resp["body"].(map[string]interface{}); ok {
		if code, _ := body["Code"].(string); code != "" && code != "OK" {
			message, _ := body["Message"].(string)
			c.log.Error("SMS rejected", zap.String("phone", masked), zap.String("code", code), zap.String("message", message))
			return fmt.Errorf("sms rejected: %s %s", code, message)
		}
	}

	c.log.Info("SMS sent", zap.String("phone", masked), zap.String("template", templateCode))
	return nil
}

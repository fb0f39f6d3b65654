// Package aliyun 短信和滑块验证共用的 OpenAPI 客户端配置
package aliyun

import (
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"

	"Pantiss/config"
)

// Credential 配置了 AccessKey 时直接使用，否则交给 SDK 的默认凭据链
func Credential(cfg config.Config) (credential.Credential, error) {
	var credCfg *credential.Config
	if cfg.AliCloudAccessKeyID != "" && cfg.AliCloudAccessKeySecret != "" {
		credCfg = &credential.Config{
			Type:            tea.String("access_key"),
			AccessKeyId:     tea.String(cfg.AliCloudAccessKeyID),
			AccessKeySecret: tea.String(cfg.AliCloudAccessKeySecret),
		}
	}

	cred, err := credential.NewCredential(credCfg)
	if err != nil {
		return nil, fmt.Errorf("aliyun credential: %w", err)
	}
	return cred, nil
}

// OpenAPIConfig endpoint 不能为空
func OpenAPIConfig(cfg config.Config, endpoint string) (*openapi.Config, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("aliyun endpoint is empty")
	}
	cred, err := Credential(cfg)
	if err != nil {
		return nil, err
	}
	return &openapi.Config{
		Credential: cred,
		Endpoint:   tea.String(endpoint),
	}, nil
}

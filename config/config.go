package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"pantiss-onboarding"`

	// 存储驱动：memory 用于本地开发和测试
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"` // memory, redis
	AccountStore string `env:"ACCOUNT_STORE" envDefault:"memory"` // memory, postgres

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"pantiss"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplica  string `env:"POSTGRESQL_REPLICA_DSN"` // 只读副本，可选

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"pantiss"`

	// RabbitMQ 配置
	RabbitMQEnabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// CSRF / Session，默认关闭，仅浏览器同源部署时开启
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"false"`
	CSRFSecret    string `env:"CSRF_SECRET"`
	SessionSecret string `env:"SESSION_SECRET"`

	// 阿里云凭证
	// 注意：AccessKey 和 SecretKey 也可以通过阿里云 SDK 的环境变量自动获取
	AliCloudAccessKeyID     string `env:"ALIBABA_CLOUD_ACCESS_KEY_ID"`
	AliCloudAccessKeySecret string `env:"ALIBABA_CLOUD_ACCESS_KEY_SECRET"`

	// 短信服务配置
	SMSProvider            string `env:"SMS_PROVIDER" envDefault:"mock"` // aliyun, mock
	SMSSignName            string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode        string `env:"SMS_TEMPLATE_CODE"`         // 验证码模板
	SMSWelcomeTemplateCode string `env:"SMS_WELCOME_TEMPLATE_CODE"` // 注册成功通知模板
	SMSEndpoint            string `env:"SMS_ENDPOINT" envDefault:"dysmsapi.ap-southeast-1.aliyuncs.com"`

	// 邮件服务配置（worker 使用）
	MailProvider string `env:"MAIL_PROVIDER" envDefault:"smtp"` // smtp, log
	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"25"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@pantiss.local"`

	// 加密配置
	EncryptionKey   string `env:"ENCRYPTION_KEY"` // 用于加密 Aadhar 号码，32字节 AES-256，留空则只存掩码
	ContactHashSalt string `env:"CONTACT_HASH_SALT" envDefault:"pantiss"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 可观测性
	OTelEnabled       bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint      string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	PrometheusEnabled bool   `env:"PROMETHEUS_ENABLED" envDefault:"true"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// 验证码配置，0 表示不启用对应策略
	CodeExpireSeconds   int    `env:"CODE_EXPIRE_SECONDS" envDefault:"0"`
	CodeMaxDaily        int    `env:"CODE_MAX_DAILY" envDefault:"0"`
	CodeSliderThreshold int    `env:"CODE_SLIDER_THRESHOLD" envDefault:"0"` // 超过此次数需要滑块验证
	CaptchaProvider     string `env:"CAPTCHA_PROVIDER" envDefault:"none"`   // 滑块验证提供商：aliyun, mock, none
	CaptchaSceneID      string `env:"CAPTCHA_SCENE_ID"`
	CaptchaEndpoint     string `env:"CAPTCHA_ENDPOINT" envDefault:"captcha.ap-southeast-1.aliyuncs.com"`

	// 向导会话
	WizardTTLMinutes int `env:"WIZARD_TTL_MINUTES" envDefault:"60"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 在进程启动时调用，缺少必填项直接返回错误。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore)
	}

	switch c.AccountStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("ACCOUNT_STORE must be memory or postgres, got %q", c.AccountStore)
	}

	switch c.MailProvider {
	case "smtp", "log":
	default:
		return fmt.Errorf("MAIL_PROVIDER must be smtp or log, got %q", c.MailProvider)
	}

	if c.EncryptionKey != "" && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	if c.CSRFEnabled && (c.CSRFSecret == "" || c.SessionSecret == "") {
		return fmt.Errorf("CSRF_SECRET and SESSION_SECRET are required when CSRF_ENABLED")
	}

	if c.CodeExpireSeconds < 0 || c.CodeMaxDaily < 0 || c.CodeSliderThreshold < 0 {
		return fmt.Errorf("code policy values must not be negative")
	}

	if strings.EqualFold(c.SMSProvider, "aliyun") {
		if c.SMSSignName == "" {
			log.Printf("WARN: SMS_SIGN_NAME is not set, SMS service may not work properly")
		}
		if c.SMSTemplateCode == "" {
			log.Printf("WARN: SMS_TEMPLATE_CODE is not set, SMS service may not work properly")
		}
	}

	return nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) UsesRedis() bool {
	return c.SessionStore == "redis" || c.RateLimitEnabled
}

func (c *Config) UsesPostgres() bool {
	return c.AccountStore == "postgres"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"Pantiss/config"
)

// Logger 在 Init 之前是 no-op，测试中无需初始化
var (
	Logger   = zap.NewNop()
	logClose io.Closer
)

var levels = map[string]struct {
	zap  zapcore.Level
	hlog hlog.Level
}{
	"DEBUG": {zapcore.DebugLevel, hlog.LevelDebug},
	"INFO":  {zapcore.InfoLevel, hlog.LevelInfo},
	"WARN":  {zapcore.WarnLevel, hlog.LevelWarn},
	"ERROR": {zapcore.ErrorLevel, hlog.LevelError},
}

// Init 同时接管 hertz 的 hlog，access log 和业务日志走同一个 core
func Init() {
	cfg := config.Cfg

	lv, ok := levels[strings.ToUpper(cfg.LoggerLevel)]
	if !ok {
		lv = levels["INFO"]
	}
	coreLevel := zap.NewAtomicLevelAt(lv.zap)

	zapOpts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", cfg.ServiceName),
			zap.String("env", cfg.Environment),
		),
	}
	if cfg.IsProduction() {
		// 验证码洪峰时同类日志每秒只保留前 100 条
		zapOpts = append(zapOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, 1e9, 100, 100)
		}))
	}

	hzLogger := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(buildEncoder(cfg)),
		hertzzap.WithCoreWs(buildWriteSyncer(cfg.LoggerOutputPath)),
		hertzzap.WithCoreLevel(coreLevel),
		hertzzap.WithZapOptions(zapOpts...),
	)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(lv.hlog)

	Logger = hzLogger.Logger()
	Logger.Info("Logger initialized",
		zap.String("level", coreLevel.Level().CapitalString()),
		zap.String("format", cfg.LoggerFormat),
	)
}

// Component 带 component 字段的子 logger
func Component(name string) *zap.Logger {
	return Logger.With(zap.String("component", name))
}

func Sync() {
	_ = Logger.Sync()

	if logClose != nil {
		_ = logClose.Close()
	}
}

func buildEncoder(cfg config.Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if cfg.IsDevelopment() || strings.EqualFold(cfg.LoggerFormat, "text") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func buildWriteSyncer(path string) zapcore.WriteSyncer {
	switch strings.ToLower(path) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	logClose = file

	return zapcore.AddSync(file)
}

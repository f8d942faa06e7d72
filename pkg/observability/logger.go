package observability

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig 日志配置
type LogConfig struct {
	Level          string
	Format         string // json/console
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// NewZap 创建 zap 日志
func NewZap(cfg LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	zapConfig.InitialFields = map[string]interface{}{
		"service":     cfg.ServiceName,
		"version":     cfg.ServiceVersion,
		"environment": cfg.Environment,
	}

	// kratos Helper 已经定位到调用方，不需要 zap 再记录一次
	zapConfig.DisableCaller = true
	zapConfig.DisableStacktrace = true

	return zapConfig.Build()
}

// ZapLogger 把 zap 适配为 kratos log.Logger
type ZapLogger struct {
	log *zap.Logger
}

var _ log.Logger = (*ZapLogger)(nil)

// NewZapLogger 创建 kratos 日志适配器
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{log: z}
}

// Log 实现 log.Logger
func (l *ZapLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	if ce := l.log.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Sync 刷新缓冲
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func toZapLevel(level log.Level) zapcore.Level {
	switch level {
	case log.LevelDebug:
		return zapcore.DebugLevel
	case log.LevelWarn:
		return zapcore.WarnLevel
	case log.LevelError:
		return zapcore.ErrorLevel
	case log.LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

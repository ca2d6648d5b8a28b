package logger

import (
	"edureach_backend/internal/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 Nop，测试中无需初始化
var Log = zap.NewNop()

// level 可在运行时调整，配置热更新时使用
var level = zap.NewAtomicLevel()

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "time",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// InitLogger 文件输出 JSON（lumberjack 滚动），控制台输出可读格式
func InitLogger(cfg *config.Config) {
	level.SetLevel(ParseLevel(cfg.Log.Level, cfg.Server.Mode))

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level),
	}
	if cfg.Log.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).Named("edureach")
}

// ParseLevel 未配置或无法识别时，debug 模式用 Debug，其余用 Info
func ParseLevel(name, mode string) zapcore.Level {
	if name != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(name)); err == nil {
			return l
		}
	}
	if mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// SetLevel 配置热更新时调整日志级别
func SetLevel(cfg *config.Config) {
	next := ParseLevel(cfg.Log.Level, cfg.Server.Mode)
	if level.Level() != next {
		level.SetLevel(next)
		Log.Info("log level changed", zap.Stringer("level", next))
	}
}

// Package logging 创建命令行使用的 zap 日志
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv 设置为 1、true 或 on 时强制输出调试日志
const DebugEnv = "JVMBC_DEBUG"

// DebugEnabled 检查环境变量
func DebugEnabled() bool {
	switch os.Getenv(DebugEnv) {
	case "1", "true", "on":
		return true
	}
	return false
}

// New 创建日志记录器，日志写到标准错误
//
// level 为空时使用 warn。
func New(level string, development bool) (*zap.Logger, error) {
	lvl := zapcore.WarnLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	if DebugEnabled() {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level 日志级别
type Level = zerolog.Level

// 日志级别常量
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelError = zerolog.ErrorLevel
)

// ZeroLogger 基于 zerolog 的日志实现, 参数使用 FormatArgs 格式化
type ZeroLogger struct {
	logger zerolog.Logger
}

// NewZeroLogger 构造一个输出到 w 的控制台日志
func NewZeroLogger(w io.Writer, level Level) *ZeroLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: true}
	return &ZeroLogger{logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewJSONLogger 构造一个输出 JSON 行的日志, 适合采集
func NewJSONLogger(w io.Writer, level Level) *ZeroLogger {
	return &ZeroLogger{logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Zero 返回底层的 zerolog.Logger
func (z *ZeroLogger) Zero() *zerolog.Logger {
	return &z.logger
}

func (z *ZeroLogger) Info(args ...any) {
	z.logger.Info().Msg(FormatArgs(args...))
}

func (z *ZeroLogger) Error(args ...any) {
	z.logger.Error().Msg(FormatArgs(args...))
}

func (z *ZeroLogger) Fatal(args ...any) {
	z.logger.WithLevel(zerolog.FatalLevel).Msg(FormatArgs(args...))
	os.Exit(1)
}

// ParseLevel 解析日志级别, 无法识别时返回 def
func ParseLevel(s string, def Level) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	case "warn", "warning":
		return zerolog.WarnLevel
	default:
		return def
	}
}

// SetLevel 设置全局日志级别, 对所有 ZeroLogger 生效
func SetLevel(level Level) {
	zerolog.SetGlobalLevel(level)
}

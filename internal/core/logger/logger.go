// Package logger 控制台进程的 zap 日志：stdout 加可选的 lumberjack 文件切割，
// 以及把 gin / cron / gorm 这类只认 io.Writer 或 *log.Logger 的组件接到 zap。
package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"affiliate-admin/internal/core/config"
)

type Options struct {
	Level  string // debug / info / warn / error，非法值按 info
	JSON   bool
	Fields []zap.Field // 每条日志都带上的字段（app / env）
	File   *lumberjack.Logger
	Out    zapcore.WriteSyncer // 默认 stdout
}

// FromConfig 按配置文件的 log 段构建；开发环境用彩色控制台格式
func FromConfig(c config.Log, app config.App) (*zap.Logger, func()) {
	o := Options{
		Level:  c.Level,
		JSON:   c.JSON,
		Fields: []zap.Field{zap.String("app", app.Name), zap.String("env", app.Env)},
	}
	if c.File != "" {
		o.File = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    max(1, c.MaxSizeMB),
			MaxBackups: max(0, c.MaxBackups),
			MaxAge:     max(0, c.MaxAgeDays),
			Compress:   c.Compress,
		}
	}
	return Build(o)
}

func Build(o Options) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(o.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := encoder(o.JSON)
	out := o.Out
	if out == nil {
		out = zapcore.Lock(os.Stdout)
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, out, lvl)}
	if o.File != nil {
		// 文件里统一 JSON，方便采集
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(o.File), lvl))
	}

	// 每秒同一条消息前 100 条全记，之后每 100 条记 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller(), zap.Fields(o.Fields...)}
	if !o.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	return l, func() {
		_ = l.Sync()
		if o.File != nil {
			_ = o.File.Close()
		}
	}
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter gin 的路由调试输出
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &lineWriter{l: l, level: level}
}

// ToStdLogger cron 与 gorm 的 Printf 风格日志
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}

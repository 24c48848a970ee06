// Package logger 建立服務使用的 *slog.Logger
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// 輸出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options Logger 設定
type Options struct {
	Level  string    // "debug", "info", "warn", "error"
	Format string    // "text" (終端機彩色輸出) 或 "json"
	Writer io.Writer // 預設 os.Stderr
	Prefix string
}

// New 根據設定建立 Logger
func New(opts Options) (*slog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          opts.Prefix,
		})
		return slog.New(handler), nil
	case FormatJSON:
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
		l := slog.New(handler)
		if opts.Prefix != "" {
			l = l.With(slog.String("component", opts.Prefix))
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

// ParseLevel 空字串視為 info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

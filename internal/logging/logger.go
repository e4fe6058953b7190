// Package logging はアプリケーション全体で使う構造化ロガーを提供します。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New は指定レベルの JSON ロガーを作成し、slog のデフォルトにも設定します。
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter は出力先を指定してロガーを作成します。
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

// ParseLevel はログレベル文字列を slog.Level に変換します。未知の値は Info になります。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

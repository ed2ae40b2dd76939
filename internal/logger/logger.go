// Package logger configures stderr diagnostics for the scanner. Output is
// colorized when stderr is a terminal and plain text otherwise; stdout is
// reserved for the report.
package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// level defaults to Error so that data-quality warnings stay silent unless
// verbose diagnostics are requested.
var level = func() *slog.LevelVar {
	v := &slog.LevelVar{}
	v.Set(slog.LevelError)
	return v
}()

// Setup installs the default slog logger. verbose enables debug-level
// diagnostics (data-quality warnings, per-archive recoveries, progress).
func Setup(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(newHandler()))
}

func newHandler() slog.Handler {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return tint.NewHandler(os.Stderr, &tint.Options{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		})
	}
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}

func Debugf(format string, a ...any) { slog.Debug(fmt.Sprintf(format, a...)) }
func Warnf(format string, a ...any)  { slog.Warn(fmt.Sprintf(format, a...)) }
func Errorf(format string, a ...any) { slog.Error(fmt.Sprintf(format, a...)) }

package stitchbuilder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/setanarut/stitchbuilder/utils"
)

// nopHandler discards all records. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by stitchbuilder and propagates it
// to the utils package. By default nothing is logged. Pass nil to restore the
// silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-region diagnostics
//   - [slog.LevelInfo]: pipeline steps (mirrors the build journal)
//   - [slog.LevelWarn]: skipped regions, fallback pattern
func SetLogger(l *slog.Logger) {
	utils.SetLogger(l)
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// journal collects the human-readable steps of one build. A new journal is
// allocated for every build.
type journal struct {
	entries []string
}

func (j *journal) step(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.entries = append(j.entries, msg)
	Logger().Info(msg)
}

func (j *journal) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.entries = append(j.entries, msg)
	Logger().Warn(msg)
}

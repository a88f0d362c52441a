package universe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

//nopHandler discards every record, Enabled returns false so nothing gets formatted
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

//SetLogger configures the logger used by the simulation engine
//by default nothing is logged; pass nil to silence it again.
//
//Levels:
//  - Debug: skipped ticks (no frame, no background)
//  - Info: lifecycle (run started/stopped, background captured)
//  - Error: malformed frames that stop the run
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

//Logger returns the current engine logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

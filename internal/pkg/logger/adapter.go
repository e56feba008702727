package logger

import "wallet_sync/internal/app/port"

// slogAdapter реализует интерфейс port.Logger поверх глобальных функций пакета.
type slogAdapter struct {
	args []any
}

// NewSlogAdapter returns a port.Logger backed by the global slog logger.
// The optional args are attached to every record, e.g. "component", "refresh".
func NewSlogAdapter(args ...any) port.Logger {
	return &slogAdapter{args: args}
}

func (a *slogAdapter) with(args []any) []any {
	if len(a.args) == 0 {
		return args
	}
	merged := make([]any, 0, len(a.args)+len(args))
	merged = append(merged, a.args...)
	return append(merged, args...)
}

func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{args: a.with(args)}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, a.with(args)...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, a.with(args)...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, a.with(args)...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, a.with(args)...)
}

type nopLogger struct{}

// NewNop returns a port.Logger that drops every record.
func NewNop() port.Logger {
	return nopLogger{}
}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (n nopLogger) With(...any) port.Logger { return n }

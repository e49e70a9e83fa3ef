// Package contextkeys переносит через context.Context то, что нужно каждому
// слою цикла опроса: логгер с уже добавленными полями и идентификатор цикла.
package contextkeys

import (
	"context"

	"adoption-tracker-service/internal/core/port"
)

type (
	loggerKey  struct{}
	cycleIDKey struct{}
)

// ContextWithLogger помещает логгер в контекст
func ContextWithLogger(ctx context.Context, logger port.LoggerPort) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext возвращает логгер из контекста или логгер, который все отбрасывает.
// Адаптеры и тесты могут вызывать use case с голым context.Background().
func LoggerFromContext(ctx context.Context) port.LoggerPort {
	if logger, ok := ctx.Value(loggerKey{}).(port.LoggerPort); ok && logger != nil {
		return logger
	}
	return discardLogger{}
}

// ContextWithCycleID помечает контекст идентификатором цикла опроса
func ContextWithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey{}, cycleID)
}

// CycleIDFromContext возвращает идентификатор цикла, пустая строка - вне цикла
func CycleIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(cycleIDKey{}).(string)
	return id
}

type discardLogger struct{}

func (discardLogger) Info(string, port.Fields)                {}
func (discardLogger) Warn(string, port.Fields)                {}
func (discardLogger) Error(string, error, port.Fields)        {}
func (discardLogger) Debug(string, port.Fields)               {}
func (d discardLogger) WithFields(port.Fields) port.LoggerPort { return d }

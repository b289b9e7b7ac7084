package pbxapi

import (
	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface used by the
// HTTP layer.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a Logger backed by the given zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug implements Logger.
func (l *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info implements Logger.
func (l *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn implements Logger.
func (l *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error implements Logger.
func (l *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}

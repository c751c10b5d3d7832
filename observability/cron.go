package observability

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type cronLogger struct {
	log zerolog.Logger
}

// CronLogger adapts a zerolog logger to the cron.Logger interface.
func CronLogger(log zerolog.Logger) cron.Logger {
	return cronLogger{log: log.With().Str("component", "cron").Logger()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

package migration

import "github.com/rs/zerolog"

// GooseAdapter routes goose's log output through zerolog.
type GooseAdapter struct {
	logger zerolog.Logger
}

func NewGooseAdapter(logger zerolog.Logger) *GooseAdapter {
	return &GooseAdapter{logger: logger.With().Str("component", "migration").Logger()}
}

func (a *GooseAdapter) Fatalf(format string, v ...interface{}) {
	a.logger.Fatal().Msgf(format, v...)
}

func (a *GooseAdapter) Printf(format string, v ...interface{}) {
	a.logger.Info().Msgf(format, v...)
}

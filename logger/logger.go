package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger carrying component fields
type Logger struct {
	logger zerolog.Logger
}

// Default is the process-wide logger, set by Init
var Default *Logger

// Init builds Default from LOG_LEVEL and PRICECHECK_ENVIRONMENT.
// Production runs write JSON lines, everything else a console format.
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	Default = build(os.Stdout, isProduction())
	Default.Debug().
		Str("level", level.String()).
		Msg("Logger ready")
}

func isProduction() bool {
	return os.Getenv("PRICECHECK_ENVIRONMENT") == "production"
}

func build(out io.Writer, jsonOutput bool) *Logger {
	if !jsonOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return &Logger{logger: zerolog.New(out).With().Timestamp().Logger()}
}

// getLogLevel prefers LOG_LEVEL; without it production logs at info and
// other environments at debug. Unknown level names fall back to info.
func getLogLevel() zerolog.Level {
	name := os.Getenv("LOG_LEVEL")
	if name == "" {
		if isProduction() {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// New wraps an existing zerolog logger, mostly useful in tests
func New(l zerolog.Logger) *Logger {
	return &Logger{logger: l}
}

// WithStr returns a child logger with an extra string field
func (l *Logger) WithStr(key, value string) *Logger {
	return &Logger{logger: l.logger.With().Str(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

func current() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// Info logs a printf-style message on Default
func Info(format string, v ...interface{}) {
	current().Info().Msgf(format, v...)
}

// Warn logs a printf-style warning on Default
func Warn(format string, v ...interface{}) {
	current().Warn().Msgf(format, v...)
}

func component(name string) *Logger {
	return current().WithStr("component", name)
}

// ForWorker is the logger of the run pipeline
func ForWorker() *Logger { return component("worker") }

// ForFetcher is the logger of the page fetcher
func ForFetcher() *Logger { return component("fetcher") }

// ForSheets tags log lines with the spreadsheet tab they concern
func ForSheets(sheet string) *Logger {
	return component("sheets").WithStr("sheet", sheet)
}

// ForRecorder tags log lines with the row recorder they concern
func ForRecorder(name string) *Logger {
	return component("recorder").WithStr("recorder", name)
}

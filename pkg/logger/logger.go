package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init configures the package logger (called once from main).
// Development environments get console output, everything else JSON.
func Init(env, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.DurationFieldUnit = time.Millisecond

	var out io.Writer = os.Stdout
	if strings.EqualFold(env, "development") || strings.EqualFold(env, "dev") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()

	if err != nil && level != "" {
		Warnf("Unknown log level %q, falling back to info", level)
	}
}

// SetOutput replaces the writer, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	log = zerolog.New(w).Level(log.GetLevel()).With().Timestamp().Logger()
	mu.Unlock()
}

// L returns the underlying logger for structured fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Infof(format string, v ...any) {
	L().Info().Msg(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	L().Warn().Msg(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	L().Error().Msg(fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) {
	L().Debug().Msg(fmt.Sprintf(format, v...))
}

func Fatalf(format string, v ...any) {
	L().Fatal().Msg(fmt.Sprintf(format, v...))
}

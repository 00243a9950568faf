// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. Human-readable console output is
// used when stderr is a terminal, JSON lines otherwise. An unknown level
// falls back to info.
func Setup(level string) {
	SetupWriter(level, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(level string, w io.Writer, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Package logging builds the zerolog logger handed to every component of a
// refresh run.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level   zerolog.Level
	Pretty  bool   // console output instead of JSON lines
	LogFile string // optional rotated file, JSON lines
	Out     io.Writer // defaults to stderr; stdout carries the JSON result
}

// New returns a logger tagged with a fresh run id, plus the run id itself.
func New(opts Options) (zerolog.Logger, string) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	if opts.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	if opts.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	runID := uuid.NewString()
	logger := zerolog.New(out).
		Level(opts.Level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	return logger, runID
}

// Package logging builds the zerolog logger used by the CLI and the
// statement runner.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	permission = 0o664
)

// Builder assembles a logger from an output and a level.
type Builder struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

// Logger is a built logger plus the file it owns, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New starts a builder writing warnings and above to stderr.
func New() *Builder {
	return &Builder{writer: os.Stderr, level: zerolog.WarnLevel}
}

// FromPath appends log lines to the file at path.
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromWriter writes log lines to w.
func (b *Builder) FromWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

// Level sets the minimum level.
func (b *Builder) Level(l zerolog.Level) *Builder {
	b.level = l
	return b
}

// Console switches to human-readable output.
func (b *Builder) Console(on bool) *Builder {
	b.console = on
	return b
}

// Make builds the logger.
func (b *Builder) Make() (*Logger, error) {
	l := &Logger{}
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.SyncWriter(f)
	} else if b.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	l.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a configured level name to a zerolog level. Unknown
// names fall back to warn.
func ParseLevel(name string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || name == "" {
		return zerolog.WarnLevel
	}
	return l
}

// Verbosity adjusts base by the -v count and -q flag.
func Verbosity(base zerolog.Level, verbose int, quiet bool) zerolog.Level {
	if quiet {
		return zerolog.ErrorLevel
	}
	l := base - zerolog.Level(verbose)
	if l < zerolog.TraceLevel {
		l = zerolog.TraceLevel
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger { return zerolog.Nop() }

// Package logging sets up the output streams of the merge driver.
//
// git runs merge drivers non-interactively, so their output is easy to
// lose. The driver therefore writes its standard output and standard error
// to two log files, opened before any other work happens. Both targets are
// configurable; "-" keeps the process stream. Structured diagnostics go
// through a zap logger that writes debug and info entries to the stdout
// sink and warnings and errors to the stderr sink.
package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StreamPath selects the process stream instead of a file.
const StreamPath = "-"

// Options selects the redirect targets.
type Options struct {
	// StdoutPath receives plain output and debug/info logs.
	StdoutPath string

	// StderrPath receives warnings, errors and the stderr of child
	// processes.
	StderrPath string

	// Verbose enables debug-level entries.
	Verbose bool

	// Optional lists paths whose parent directory may legitimately be
	// missing (the legacy defaults). Such a path silently falls back to the
	// process stream instead of failing.
	Optional []string
}

// Sinks bundles the opened output streams and the logger writing to them.
type Sinks struct {
	// Out is the redirected standard output.
	Out io.Writer

	// Err is the redirected standard error.
	Err io.Writer

	// Logger writes structured entries to Out and Err by level.
	Logger *zap.Logger

	closers []io.Closer
}

// Open opens both sinks. fallbackOut and fallbackErr are used for the
// "-" target and for optional paths that cannot be created.
func Open(opts Options, fallbackOut, fallbackErr io.Writer) (*Sinks, error) {
	s := &Sinks{}

	out, err := s.open(opts.StdoutPath, opts.Optional, fallbackOut)
	if err != nil {
		return nil, err
	}
	errW, err := s.open(opts.StderrPath, opts.Optional, fallbackErr)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Out = out
	s.Err = errW
	s.Logger = newLogger(out, errW, opts.Verbose)
	return s, nil
}

// open resolves one target to a writer.
func (s *Sinks) open(path string, optional []string, fallback io.Writer) (io.Writer, error) {
	if path == "" || path == StreamPath {
		return fallback, nil
	}

	// Truncate like a fresh redirect would: each run owns its log.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && contains(optional, path) {
			return fallback, nil
		}
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	s.closers = append(s.closers, f)
	return f, nil
}

// Close flushes the logger and closes any opened files.
func (s *Sinks) Close() error {
	if s.Logger != nil {
		// Sync on a terminal or pipe returns EINVAL on some platforms.
		_ = s.Logger.Sync()
	}

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// newLogger builds a console logger split across the two sinks.
func newLogger(out, errW io.Writer, verbose bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "time"
	encoder := zapcore.NewConsoleEncoder(encCfg)

	minLevel := zapcore.InfoLevel
	if verbose {
		minLevel = zapcore.DebugLevel
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(out), low),
		zapcore.NewCore(encoder, zapcore.AddSync(errW), high),
	)
	return zap.New(core).Named("mergepom")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

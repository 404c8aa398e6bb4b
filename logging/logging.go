// Package logging sets up the zap loggers of the process and carries them
// through contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKeyType string

const (
	loggerKey = loggerKeyType("logger")

	recentLines = 1000
)

var (
	rootLogger = zap.NewNop()
	recent     = NewMemoryLogger(recentLines)
)

// Options of the root logger
type Options struct {
	// DevMode logs at debug level, in console format, to stdout
	DevMode bool
	// File receives JSON logs if not empty
	File string
}

// Configure replaces the root logger. The returned function flushes and closes
// the log outputs.
func Configure(o Options) (func(), error) {
	debugFilter := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.DebugLevel
	})
	infoFilter := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.InfoLevel
	})

	var jsonEncoder zapcore.Encoder
	var filter zap.LevelEnablerFunc
	var cores []zapcore.Core
	if o.DevMode {
		jsonEncoder = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
		filter = debugFilter
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), filter))
	} else {
		jsonEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		filter = infoFilter
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.Lock(os.Stderr), filter))
	}
	cores = append(cores, zapcore.NewCore(jsonEncoder, recent, filter))

	closers := []io.Closer{}
	if o.File != "" {
		logfile, err := os.OpenFile(o.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, logfile)
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.Lock(logfile), filter))
	}

	rootLogger = zap.New(zapcore.NewTee(cores...))
	rootLogger.With(zap.Bool("devmode", o.DevMode)).Info("Logging initialized")
	return func() {
		_ = rootLogger.Sync()
		for _, c := range closers {
			c.Close()
		}
	}, nil
}

// Dump writes the most recent log lines, newest first if reverse is set
func Dump(w io.Writer, reverse bool) error {
	return recent.Export(w, reverse)
}

// From returns the logger of the current context, if no logger is available, returns the root logger
func From(ctx context.Context) *zap.Logger {
	l := ctx.Value(loggerKey)
	if l == nil {
		return rootLogger
	}
	return l.(*zap.Logger)
}

func SubFrom(ctx context.Context, name string) (*zap.Logger, context.Context) {
	logger := From(ctx).Named(name)
	return logger, Context(ctx, logger)
}

func Context(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = rootLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

func FromWithFields(ctx context.Context, fields ...zapcore.Field) (*zap.Logger, context.Context) {
	logger := From(ctx).With(fields...)
	ctx = Context(ctx, logger)
	return logger, ctx
}
